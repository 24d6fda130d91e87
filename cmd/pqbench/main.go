// Command pqbench measures the throughput or rank-error quality of a
// relaxed concurrent priority queue under a configurable insert/pop
// workload.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwilliams-bench/relaxq/internal/cancel"
	"github.com/mwilliams-bench/relaxq/internal/config"
	"github.com/mwilliams-bench/relaxq/internal/eventlog"
	"github.com/mwilliams-bench/relaxq/internal/pq"
	"github.com/mwilliams-bench/relaxq/internal/stress"
)

func main() {
	mode := config.Throughput
	if len(os.Args) > 1 && os.Args[1] == "quality" {
		mode = config.Quality
		os.Args = append(os.Args[:1], os.Args[2:]...)
	}

	cfg, help, err := config.ParseStressFlags(os.Args[1:], mode, os.Stderr)
	if help {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(mode, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(mode config.Mode, cfg config.StressConfig) error {
	modeLabel := "throughput"
	if mode == config.Quality {
		modeLabel = "quality"
	}
	log.Printf("Measuring %s!", modeLabel)
	log.Printf("Settings: threads=%d prefill=%d seed=%d pq=%s", cfg.NumThreads, cfg.PrefillSize, cfg.Seed, cfg.Variant)

	queue, err := pq.NewVariant(pq.Variant(cfg.Variant), cfg.NumThreads, cfg.Seed, pq.DefaultConfig())
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	log.Printf("Using priority queue: %s", queue.Description())

	settings := stress.Settings{
		PrefillSize:    cfg.PrefillSize,
		NumThreads:     cfg.NumThreads,
		SleepBetweenOp: time.Duration(cfg.SleepNanos),
		Seed:           cfg.Seed,
		PinCPUs:        cfg.Pin,
		Insert:         cfg.Insert,
	}

	if mode == config.Throughput {
		return runThroughput(settings, cfg, queue)
	}
	return runQuality(settings, cfg, queue)
}

func runThroughput(settings stress.Settings, cfg config.StressConfig, queue pq.PriorityQueue) error {
	log.Println("Starting the stress test...")
	stop := installSignalCanceler()
	res := stress.RunThroughput(settings, time.Duration(cfg.TestDurationMillis)*time.Millisecond, queue, stop)
	log.Println("done")

	return config.WriteThroughputResult(os.Stdout, config.ThroughputResult{
		Insertions:      res.Insertions,
		Deletions:       res.Deletions,
		FailedDeletions: res.FailedDeletions,
		OpsPerSecond:    res.OpsPerSecond(),
	}, cfg.JSON)
}

func runQuality(settings stress.Settings, cfg config.StressConfig, queue pq.PriorityQueue) error {
	log.Println("Starting the stress test...")
	stop := installSignalCanceler()
	res, err := stress.RunQuality(settings, cfg.MinDeletions, queue, stop)
	if err != nil {
		return err
	}
	log.Println("done")

	report := config.QualityReport{
		NumThreads:      res.NumThreads,
		Insertions:      make([][]config.QualityInsert, res.NumThreads),
		Deletions:       make([][]config.QualityDelete, res.NumThreads),
		FailedDeletions: make([][]uint64, res.NumThreads),
	}
	for _, r := range res.Records {
		if r.ThreadID < 0 || r.ThreadID >= res.NumThreads {
			continue
		}
		switch r.Kind {
		case eventlog.KindInsertion:
			report.Insertions[r.ThreadID] = append(report.Insertions[r.ThreadID], config.QualityInsert{
				ThreadID: r.ThreadID, Tick: r.Tick, Key: r.Key,
			})
		case eventlog.KindDeletion:
			producerTID, elemID := stress.FromValue(r.Value)
			report.Deletions[r.ThreadID] = append(report.Deletions[r.ThreadID], config.QualityDelete{
				ThreadID: r.ThreadID, Tick: r.Tick, ProducerTID: producerTID, ElemID: elemID,
			})
		case eventlog.KindFailedDeletion:
			report.FailedDeletions[r.ThreadID] = append(report.FailedDeletions[r.ThreadID], r.Tick)
		}
	}

	return config.WriteQualityReport(os.Stdout, report, cfg.JSON)
}

// installSignalCanceler returns an AtomicCanceler that SIGINT/SIGTERM
// trips, letting a long-running stress test stop early and still print
// its partial results instead of being killed mid-run.
func installSignalCanceler() *cancel.AtomicCanceler {
	c := cancel.NewAtomic()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		c.Cancel()
	}()
	return c
}
