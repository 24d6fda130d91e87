// Command sssp measures the performance of a relaxed concurrent
// priority queue on the single-source-shortest-paths problem, sweeping
// thread counts 1, 2, 4, ... up to the configured maximum and verifying
// each run's distances against a precomputed solution.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mwilliams-bench/relaxq/internal/config"
	"github.com/mwilliams-bench/relaxq/internal/graph"
	"github.com/mwilliams-bench/relaxq/internal/pq"
	"github.com/mwilliams-bench/relaxq/internal/sssp"
)

func main() {
	cfg, help, err := config.ParseSSSPFlags(os.Args[1:], os.Stderr)
	if help {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.SSSPConfig) error {
	log.Printf("Settings: threads=%d graph=%s pq=%s", cfg.NumThreads, cfg.GraphPath, cfg.Variant)

	g, solution, err := loadGraph(cfg.GraphPath, cfg.SolutionPath)
	if err != nil {
		return err
	}
	if len(solution) != g.NumNodes() {
		return fmt.Errorf("%w: %v", config.ErrInvalid, sssp.ErrSizeMismatch)
	}

	for _, threads := range config.ThreadSweep(cfg.NumThreads) {
		queue, err := pq.NewVariant(pq.Variant(cfg.Variant), threads, 0, pq.DefaultConfig())
		if err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}

		start := time.Now()
		res := sssp.Run(g, threads, cfg.Pin, queue)
		elapsed := time.Since(start)

		if err := sssp.Verify(res, solution); err != nil {
			return err
		}

		if err := config.WriteSSSPRow(os.Stdout, config.SSSPRow{
			Threads:        threads,
			Millis:         elapsed.Milliseconds(),
			ProcessedNodes: res.NodesProcessed,
		}, cfg.JSON); err != nil {
			return err
		}
	}
	log.Println("Done")
	return nil
}

func loadGraph(graphPath, solutionPath string) (*graph.Graph, []uint32, error) {
	gf, err := os.Open(graphPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrIO, err)
	}
	defer gf.Close()
	g, err := graph.ReadDIMACS(gf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrIO, err)
	}

	sf, err := os.Open(solutionPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrIO, err)
	}
	defer sf.Close()
	solution, err := graph.ReadSolution(sf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrIO, err)
	}

	return g, solution, nil
}
