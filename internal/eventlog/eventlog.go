// Package eventlog captures the quality-mode per-operation trace the
// stress driver records: one entry per insertion, successful deletion,
// and failed deletion, each timestamped. Every worker is a producer and
// the log is drained by a single background consumer, so the underlying
// transport is github.com/randomizedcoder/go-lock-free-ring's sharded
// MPSC ring rather than a plain mutex-guarded slice, keeping the
// bookkeeping off the hot insert/delete path the way the per-thread
// local vectors do in the benchmark this generalizes.
package eventlog

import (
	"runtime"
	"sync"

	ring "github.com/randomizedcoder/go-lock-free-ring"
)

// Kind identifies which queue operation a Record describes.
type Kind uint8

const (
	KindInsertion Kind = iota
	KindDeletion
	KindFailedDeletion
)

func (k Kind) String() string {
	switch k {
	case KindInsertion:
		return "insertion"
	case KindDeletion:
		return "deletion"
	case KindFailedDeletion:
		return "failed_deletion"
	default:
		return "unknown"
	}
}

// Record is one logged operation. Key is populated for insertions, Value
// for successful deletions; both are zero for failed deletions.
type Record struct {
	ThreadID int
	Tick     uint64
	Kind     Kind
	Key      uint64
	Value    uint64
}

// DefaultShardCapacity is the number of records buffered per worker shard
// before Write blocks the producer by spinning; sized generously since a
// full shard under quality-mode logging indicates the drain loop, not the
// benchmark, has become the bottleneck.
const DefaultShardCapacity = 1 << 16

// Log is a multi-producer, single-consumer event log: one shard per
// worker thread, drained by Start's background goroutine into a single
// ordered-by-drain-time slice. The ring itself is not generic, so each
// Record is boxed as any on Write and type-asserted back on drain.
type Log struct {
	ring *ring.ShardedRing

	mu      sync.Mutex
	records []Record

	stop chan struct{}
	done chan struct{}
}

// New creates a Log with one ring shard per worker thread.
func New(numThreads int) (*Log, error) {
	r, err := ring.NewShardedRing(DefaultShardCapacity, numThreads)
	if err != nil {
		return nil, err
	}
	l := &Log{
		ring: r,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	return l, nil
}

// Start launches the background drain loop. Call Stop when the run is
// complete to flush remaining records and stop the goroutine.
func (l *Log) Start() {
	go l.drainLoop()
}

func (l *Log) drainLoop() {
	defer close(l.done)
	for {
		drained := l.drainOnce()
		select {
		case <-l.stop:
			l.drainOnce()
			return
		default:
		}
		if !drained {
			runtime.Gosched()
		}
	}
}

// drainOnce reads every record currently available without blocking,
// returning whether at least one was read.
func (l *Log) drainOnce() bool {
	drainedAny := false
	for {
		v, ok := l.ring.TryRead()
		if !ok {
			return drainedAny
		}
		rec, ok := v.(Record)
		if !ok {
			continue
		}
		l.mu.Lock()
		l.records = append(l.records, rec)
		l.mu.Unlock()
		drainedAny = true
	}
}

// Stop signals the drain loop to make one final pass and exit, then
// blocks until it has.
func (l *Log) Stop() {
	close(l.stop)
	<-l.done
}

// Write records one event from threadID's shard, spinning if that
// shard's ring is momentarily full.
func (l *Log) Write(threadID int, rec Record) {
	rec.ThreadID = threadID
	for !l.ring.Write(uint64(threadID), rec) {
	}
}

// Records returns every drained record so far. Safe to call only after
// Stop has returned.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// ByThread partitions records into per-thread insertion, deletion, and
// failed-deletion slices, mirroring the original's insertions[],
// deletions[], and failed_deletions[] arrays indexed by thread id.
func ByThread(records []Record, numThreads int) (insertions, deletions [][]Record, failedDeletions [][]uint64) {
	insertions = make([][]Record, numThreads)
	deletions = make([][]Record, numThreads)
	failedDeletions = make([][]uint64, numThreads)
	for _, r := range records {
		if r.ThreadID < 0 || r.ThreadID >= numThreads {
			continue
		}
		switch r.Kind {
		case KindInsertion:
			insertions[r.ThreadID] = append(insertions[r.ThreadID], r)
		case KindDeletion:
			deletions[r.ThreadID] = append(deletions[r.ThreadID], r)
		case KindFailedDeletion:
			failedDeletions[r.ThreadID] = append(failedDeletions[r.ThreadID], r.Tick)
		}
	}
	return insertions, deletions, failedDeletions
}
