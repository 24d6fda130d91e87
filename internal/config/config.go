// Package config parses and validates the two CLIs' flags, seeds the
// run, and formats results on stdout in the exact layouts the original
// benchmark tools produce.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/mwilliams-bench/relaxq/internal/strategy"
)

// ErrInvalid is returned for a bad flag value, an out-of-range
// parameter, or a rejected thread count.
var ErrInvalid = errors.New("config: invalid configuration")

// ErrIO is returned when a graph or solution file cannot be read or is
// malformed.
var ErrIO = errors.New("config: input file error")

// bitsForThreadID bounds quality-mode thread counts: elem ids are packed
// into the low bits of a value alongside an 8-bit thread id in the high
// bits, so quality mode cannot address more than 255 threads.
const bitsForThreadID = 8

// MaxQualityThreads is the largest thread count quality mode's value
// encoding can address.
const MaxQualityThreads = (1 << bitsForThreadID) - 1

// Mode selects the stress driver's run mode.
type Mode int

const (
	Throughput Mode = iota
	Quality
)

// StressConfig holds the validated settings for cmd/pqbench.
type StressConfig struct {
	Mode Mode

	PrefillSize        uint64
	NumThreads         int
	SleepNanos         uint64
	Seed               uint64
	TestDurationMillis uint64 // Throughput
	MinDeletions       uint64 // Quality

	Insert strategy.Config

	Variant string
	Pin     bool
	JSON    bool
}

// ParseStressFlags parses cmd/pqbench's flags from args (excluding the
// program name) and returns a validated StressConfig. help is true when
// -h/--help was requested and nothing else should run.
func ParseStressFlags(args []string, mode Mode, stderr io.Writer) (cfg StressConfig, help bool, err error) {
	fs := flag.NewFlagSet("pqbench", flag.ContinueOnError)
	fs.SetOutput(stderr)

	prefill := fs.Uint64("n", 1_000_000, "number of elements to prefill the queue with")
	threads := fs.Int("j", 4, "number of threads")
	sleepNs := fs.Uint64("w", 0, "sleep between operations, in ns")
	seed := fs.Uint64("s", 0, "initial seed")
	policy := fs.String("i", "uniform", "insert policy: uniform|split|producer|alternating")
	dist := fs.String("d", "uniform", "key distribution: uniform|dijkstra|ascending|descending|threadid")
	maxKey := fs.Uint64("m", ^uint64(0)-3, "max key")
	minKey := fs.Uint64("l", 0, "min key")
	duration := fs.Uint64("t", 3000, "test duration, in ms (throughput mode)")
	minDeletions := fs.Uint64("o", 10_000_000, "minimum number of deletions (quality mode)")
	pushThreads := fs.Int("push-threads", -1, "number of threads that only insert under split policy (default: half of threads)")
	elementsPerThread := fs.Uint64("elements-per-thread", 0, "elements each split-policy push thread inserts before it also starts popping (0 = unlimited)")
	variant := fs.String("pq", "multiqueue", "priority queue variant: multiqueue|linden|spraylist")
	pin := fs.Bool("pin", true, "pin each worker to a dedicated CPU")
	jsonOut := fs.Bool("json", false, "emit the summary as JSON instead of plain text")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return StressConfig{}, true, nil
		}
		return StressConfig{}, false, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	insertPolicy, err := parseInsertPolicy(*policy)
	if err != nil {
		return StressConfig{}, false, err
	}
	keyDist, err := parseKeyDistribution(*dist)
	if err != nil {
		return StressConfig{}, false, err
	}
	if *threads <= 0 {
		return StressConfig{}, false, fmt.Errorf("%w: threads must be positive, got %d", ErrInvalid, *threads)
	}
	if mode == Quality && *threads > MaxQualityThreads {
		return StressConfig{}, false, fmt.Errorf("%w: quality mode supports at most %d threads, got %d", ErrInvalid, MaxQualityThreads, *threads)
	}
	if *minKey > *maxKey {
		return StressConfig{}, false, fmt.Errorf("%w: min key %d exceeds max key %d", ErrInvalid, *minKey, *maxKey)
	}

	numPush := *pushThreads
	if numPush < 0 {
		numPush = *threads / 2
		if numPush == 0 {
			numPush = 1
		}
	}
	if insertPolicy == strategy.Split {
		if numPush > *threads {
			return StressConfig{}, false, fmt.Errorf("%w: push threads %d exceeds thread count %d", ErrInvalid, numPush, *threads)
		}
		if numPush == 0 && *elementsPerThread > 0 {
			return StressConfig{}, false, fmt.Errorf("%w: split policy with 0 push threads cannot push %d elements per thread", ErrInvalid, *elementsPerThread)
		}
	}

	insertCfg := strategy.DefaultConfig()
	insertCfg.Policy = insertPolicy
	insertCfg.Distribution = keyDist
	insertCfg.MinKey = *minKey
	insertCfg.MaxKey = *maxKey
	insertCfg.NumPushThreads = numPush
	insertCfg.ElementsPerThread = *elementsPerThread

	return StressConfig{
		Mode:               mode,
		PrefillSize:        *prefill,
		NumThreads:         *threads,
		SleepNanos:         *sleepNs,
		Seed:               *seed,
		TestDurationMillis: *duration,
		MinDeletions:       *minDeletions,
		Insert:             insertCfg,
		Variant:            *variant,
		Pin:                *pin,
		JSON:               *jsonOut,
	}, false, nil
}

func parseInsertPolicy(s string) (strategy.InsertPolicy, error) {
	switch s {
	case "uniform":
		return strategy.Uniform, nil
	case "split":
		return strategy.Split, nil
	case "producer":
		return strategy.Producer, nil
	case "alternating":
		return strategy.Alternating, nil
	default:
		return 0, fmt.Errorf("%w: unknown insert policy %q", ErrInvalid, s)
	}
}

func parseKeyDistribution(s string) (strategy.KeyDistribution, error) {
	switch s {
	case "uniform":
		return strategy.KeyUniform, nil
	case "ascending":
		return strategy.KeyAscending, nil
	case "descending":
		return strategy.KeyDescending, nil
	case "dijkstra":
		return strategy.KeyDijkstra, nil
	case "threadid":
		return strategy.KeyThreadID, nil
	default:
		return 0, fmt.Errorf("%w: unknown key distribution %q", ErrInvalid, s)
	}
}

// SSSPConfig holds the validated settings for cmd/sssp.
type SSSPConfig struct {
	NumThreads   int
	GraphPath    string
	SolutionPath string
	Variant      string
	Pin          bool
	JSON         bool
}

// ParseSSSPFlags parses cmd/sssp's flags.
func ParseSSSPFlags(args []string, stderr io.Writer) (cfg SSSPConfig, help bool, err error) {
	fs := flag.NewFlagSet("sssp", flag.ContinueOnError)
	fs.SetOutput(stderr)

	threads := fs.Int("j", 4, "maximum number of threads; the run sweeps 1,2,4,...,j")
	graphPath := fs.String("f", "graph.gr", "input graph path")
	solutionPath := fs.String("c", "solution.txt", "solution path to verify against")
	variant := fs.String("pq", "multiqueue", "priority queue variant: multiqueue|linden|spraylist")
	pin := fs.Bool("pin", true, "pin each worker to a dedicated CPU")
	jsonOut := fs.Bool("json", false, "emit each row as JSON instead of plain text")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return SSSPConfig{}, true, nil
		}
		return SSSPConfig{}, false, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if *threads <= 0 {
		return SSSPConfig{}, false, fmt.Errorf("%w: threads must be positive, got %d", ErrInvalid, *threads)
	}

	return SSSPConfig{
		NumThreads:   *threads,
		GraphPath:    *graphPath,
		SolutionPath: *solutionPath,
		Variant:      *variant,
		Pin:          *pin,
		JSON:         *jsonOut,
	}, false, nil
}

// ThreadSweep returns the thread counts an SSSP run iterates: 1, 2, 4, ...
// doubling up to and including max.
func ThreadSweep(max int) []int {
	var out []int
	for t := 1; t <= max; t *= 2 {
		out = append(out, t)
	}
	return out
}
