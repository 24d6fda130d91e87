package config

import (
	"fmt"
	"io"

	"github.com/sugawarayuuta/sonnet"
)

// ThroughputResult is the summary cmd/pqbench prints after a throughput
// run.
type ThroughputResult struct {
	Insertions      uint64  `json:"insertions"`
	Deletions       uint64  `json:"deletions"`
	FailedDeletions uint64  `json:"failed_deletions"`
	OpsPerSecond    float64 `json:"ops_per_second"`
}

// WriteThroughputResult prints r in the original's plain-text layout, or
// as a JSON object when json is true.
func WriteThroughputResult(w io.Writer, r ThroughputResult, json bool) error {
	if json {
		enc := sonnet.NewEncoder(w)
		return enc.Encode(r)
	}
	_, err := fmt.Fprintf(w, "Insertions: %d\nDeletions: %d\nFailed deletions: %d\nOps/s: %.2f\n",
		r.Insertions, r.Deletions, r.FailedDeletions, r.OpsPerSecond)
	return err
}

// SSSPRow is one line of cmd/sssp's per-thread-count output.
type SSSPRow struct {
	Threads        int   `json:"threads"`
	Millis         int64 `json:"millis"`
	ProcessedNodes uint64 `json:"processed_nodes"`
}

// WriteSSSPRow prints one SSSP sweep row in the original's
// "<threads> <ms> <processed_nodes>" layout, or as a JSON object when
// json is true.
func WriteSSSPRow(w io.Writer, r SSSPRow, json bool) error {
	if json {
		enc := sonnet.NewEncoder(w)
		return enc.Encode(r)
	}
	_, err := fmt.Fprintf(w, "%d %d %d\n", r.Threads, r.Millis, r.ProcessedNodes)
	return err
}

// QualityReport holds the full quality-mode trace for emission.
type QualityReport struct {
	NumThreads      int                `json:"num_threads"`
	Insertions      [][]QualityInsert  `json:"insertions"`
	Deletions       [][]QualityDelete  `json:"deletions"`
	FailedDeletions [][]uint64         `json:"failed_deletions"`
}

// QualityInsert is one logged insertion.
type QualityInsert struct {
	ThreadID int    `json:"tid"`
	Tick     uint64 `json:"tick"`
	Key      uint64 `json:"key"`
}

// QualityDelete is one logged successful deletion, naming the producer
// thread and element sequence number the value's high/low bits encode.
type QualityDelete struct {
	ThreadID     int    `json:"tid"`
	Tick         uint64 `json:"tick"`
	ProducerTID  int    `json:"producer_tid"`
	ElemID       uint64 `json:"elem_id"`
}

// WriteQualityReport prints q in the original's line-oriented layout: a
// header with the thread count, then every thread's insertions ("i"),
// deletions ("d"), and failed deletions ("f") in turn. As JSON it is a
// single object.
func WriteQualityReport(w io.Writer, q QualityReport, json bool) error {
	if json {
		enc := sonnet.NewEncoder(w)
		return enc.Encode(q)
	}
	if _, err := fmt.Fprintf(w, "%d\n", q.NumThreads); err != nil {
		return err
	}
	for tid := 0; tid < q.NumThreads; tid++ {
		for _, ins := range q.Insertions[tid] {
			if _, err := fmt.Fprintf(w, "i %d %d %d\n", ins.ThreadID, ins.Tick, ins.Key); err != nil {
				return err
			}
		}
		for _, del := range q.Deletions[tid] {
			if _, err := fmt.Fprintf(w, "d %d %d %d %d\n", del.ThreadID, del.Tick, del.ProducerTID, del.ElemID); err != nil {
				return err
			}
		}
		for _, tick := range q.FailedDeletions[tid] {
			if _, err := fmt.Fprintf(w, "f %d %d\n", tid, tick); err != nil {
				return err
			}
		}
	}
	return nil
}
