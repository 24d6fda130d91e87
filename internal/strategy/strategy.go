// Package strategy generates a per-handle stream of insert/pop decisions
// and insert keys for the stress driver, configurable along two
// orthogonal axes: an insert policy and a key distribution.
package strategy

import "math/rand/v2"

// InsertPolicy decides, for a given operation, whether it is an insert or
// a pop.
type InsertPolicy int

const (
	// Uniform: each op is an insert with fixed probability (default 50%).
	Uniform InsertPolicy = iota
	// Split: the first NumPushThreads threads only insert, the rest
	// only pop.
	Split
	// Producer: thread 0 only inserts, every other thread only pops.
	Producer
	// Alternating: strict alternation per handle (insert, pop, insert, ...).
	Alternating
)

func (p InsertPolicy) String() string {
	switch p {
	case Uniform:
		return "uniform"
	case Split:
		return "split"
	case Producer:
		return "producer"
	case Alternating:
		return "alternating"
	default:
		return "unknown"
	}
}

// KeyDistribution decides the sequence of keys an inserting handle produces.
type KeyDistribution int

const (
	// KeyUniform draws uniformly from [MinKey, MaxKey].
	KeyUniform KeyDistribution = iota
	// KeyAscending ramps from MinKey to MaxKey, saturating at MaxKey.
	KeyAscending
	// KeyDescending ramps from MaxKey to MinKey, saturating at MinKey.
	KeyDescending
	// KeyDijkstra adds a random non-negative increase in
	// [DijkstraMinIncrease, DijkstraMaxIncrease] to the last inserted
	// key, saturating at MaxKey; models the non-decreasing relaxation
	// sequence Dijkstra's algorithm produces.
	KeyDijkstra
	// KeyThreadID sets the key to (thread id mod range) + MinKey,
	// constant across the handle's lifetime.
	KeyThreadID
)

func (d KeyDistribution) String() string {
	switch d {
	case KeyUniform:
		return "uniform"
	case KeyAscending:
		return "ascending"
	case KeyDescending:
		return "descending"
	case KeyDijkstra:
		return "dijkstra"
	case KeyThreadID:
		return "threadid"
	default:
		return "unknown"
	}
}

// Config bundles the policy and distribution choice with their shared
// parameters, mirroring the original's InsertConfig<key_type> template
// argument.
type Config struct {
	Policy       InsertPolicy
	Distribution KeyDistribution

	MinKey uint64
	MaxKey uint64

	// NumPushThreads is only meaningful under Split: the number of
	// leading thread ids that insert exclusively.
	NumPushThreads int

	// ElementsPerThread is only meaningful under Split: the number of
	// elements each of the NumPushThreads push threads inserts before it
	// stops inserting and falls back to popping like the rest. 0 means
	// unlimited. NumPushThreads == 0 with ElementsPerThread > 0 is
	// invalid, since there would be no thread left to push them.
	ElementsPerThread uint64

	// InsertProbability is only meaningful under Uniform, in [0,1].
	InsertProbability float64

	// DijkstraMinIncrease/DijkstraMaxIncrease bound the per-step
	// increase under KeyDijkstra.
	DijkstraMinIncrease uint64
	DijkstraMaxIncrease uint64
}

// DefaultConfig matches the original's defaults: uniform policy at 50%,
// uniform key distribution over the full range with MaxKey shaved by 3
// because some wrapped queues reserve sentinel values near the top.
func DefaultConfig() Config {
	return Config{
		Policy:              Uniform,
		Distribution:        KeyUniform,
		MinKey:              0,
		MaxKey:              ^uint64(0) - 3,
		InsertProbability:   0.5,
		DijkstraMinIncrease: 1,
		DijkstraMaxIncrease: 100,
	}
}

// Strategy is a per-handle keystream generator. It is not safe for
// concurrent use; each worker thread owns exactly one Strategy.
type Strategy struct {
	threadID int
	cfg      Config
	rng      *rand.Rand

	lastKey    uint64
	haveLast   bool
	opSeq      uint64
	threadKey  uint64
	haveThread bool
	pushed     uint64
}

// New creates a Strategy for the given thread id, seeded deterministically
// from globalSeed and threadID so a run is reproducible across repeats.
func New(threadID int, cfg Config, globalSeed uint64) *Strategy {
	return &Strategy{
		threadID: threadID,
		cfg:      cfg,
		rng:      rand.New(rand.NewPCG(globalSeed, uint64(threadID))),
	}
}

// Insert reports whether the next operation should be an insert.
func (s *Strategy) Insert() bool {
	defer func() { s.opSeq++ }()
	switch s.cfg.Policy {
	case Split:
		if s.threadID >= s.cfg.NumPushThreads {
			return false
		}
		if s.cfg.ElementsPerThread > 0 && s.pushed >= s.cfg.ElementsPerThread {
			return false
		}
		s.pushed++
		return true
	case Producer:
		return s.threadID == 0
	case Alternating:
		return s.opSeq%2 == 0
	default: // Uniform
		return s.rng.Float64() < s.cfg.InsertProbability
	}
}

// Key returns the next key for an insert operation.
func (s *Strategy) Key() uint64 {
	switch s.cfg.Distribution {
	case KeyAscending:
		return s.next(func(last uint64) uint64 {
			if last >= s.cfg.MaxKey {
				return s.cfg.MaxKey
			}
			return last + 1
		}, s.cfg.MinKey)
	case KeyDescending:
		return s.next(func(last uint64) uint64 {
			if last <= s.cfg.MinKey {
				return s.cfg.MinKey
			}
			return last - 1
		}, s.cfg.MaxKey)
	case KeyDijkstra:
		return s.next(func(last uint64) uint64 {
			span := s.cfg.DijkstraMaxIncrease - s.cfg.DijkstraMinIncrease + 1
			inc := s.cfg.DijkstraMinIncrease
			if span > 0 {
				inc += s.rng.Uint64N(span)
			}
			next := last + inc
			if next > s.cfg.MaxKey || next < last {
				return s.cfg.MaxKey
			}
			return next
		}, s.cfg.MinKey)
	case KeyThreadID:
		if !s.haveThread {
			rng := s.cfg.MaxKey - s.cfg.MinKey + 1
			if rng == 0 {
				s.threadKey = s.cfg.MinKey
			} else {
				s.threadKey = s.cfg.MinKey + uint64(s.threadID)%rng
			}
			s.haveThread = true
		}
		return s.threadKey
	default: // KeyUniform
		span := s.cfg.MaxKey - s.cfg.MinKey + 1
		if span == 0 {
			return s.rng.Uint64()
		}
		return s.cfg.MinKey + s.rng.Uint64N(span)
	}
}

// next applies step to the last produced key, initializing it to start on
// the first call.
func (s *Strategy) next(step func(last uint64) uint64, start uint64) uint64 {
	if !s.haveLast {
		s.lastKey = start
		s.haveLast = true
		return s.lastKey
	}
	s.lastKey = step(s.lastKey)
	return s.lastKey
}
