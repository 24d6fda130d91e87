package strategy_test

import (
	"testing"

	"github.com/mwilliams-bench/relaxq/internal/strategy"
)

func TestSplitPolicy(t *testing.T) {
	cfg := strategy.DefaultConfig()
	cfg.Policy = strategy.Split
	cfg.NumPushThreads = 2

	pusher := strategy.New(0, cfg, 1)
	popper := strategy.New(2, cfg, 1)

	for i := 0; i < 5; i++ {
		if !pusher.Insert() {
			t.Fatalf("thread 0 under split should always insert")
		}
		if popper.Insert() {
			t.Fatalf("thread 2 under split should never insert")
		}
	}
}

func TestSplitPolicyElementsPerThreadCutover(t *testing.T) {
	cfg := strategy.DefaultConfig()
	cfg.Policy = strategy.Split
	cfg.NumPushThreads = 1
	cfg.ElementsPerThread = 3

	s := strategy.New(0, cfg, 1)
	for i := 0; i < 3; i++ {
		if !s.Insert() {
			t.Fatalf("push thread should still insert before its quota: op %d", i)
		}
	}
	for i := 0; i < 3; i++ {
		if s.Insert() {
			t.Fatalf("push thread should stop inserting once its quota is reached: op %d", i)
		}
	}
}

func TestProducerPolicy(t *testing.T) {
	cfg := strategy.DefaultConfig()
	cfg.Policy = strategy.Producer
	producer := strategy.New(0, cfg, 1)
	consumer := strategy.New(1, cfg, 1)

	if !producer.Insert() {
		t.Fatal("thread 0 under producer should always insert")
	}
	if consumer.Insert() {
		t.Fatal("thread 1 under producer should never insert")
	}
}

func TestAlternatingPolicy(t *testing.T) {
	cfg := strategy.DefaultConfig()
	cfg.Policy = strategy.Alternating
	s := strategy.New(0, cfg, 1)

	want := []bool{true, false, true, false, true}
	for i, w := range want {
		if got := s.Insert(); got != w {
			t.Fatalf("op %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestAscendingDistributionSaturates(t *testing.T) {
	cfg := strategy.DefaultConfig()
	cfg.Distribution = strategy.KeyAscending
	cfg.MinKey = 8
	cfg.MaxKey = 10
	s := strategy.New(0, cfg, 1)

	got := []uint64{s.Key(), s.Key(), s.Key(), s.Key()}
	want := []uint64{8, 9, 10, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestDescendingDistributionSaturates(t *testing.T) {
	cfg := strategy.DefaultConfig()
	cfg.Distribution = strategy.KeyDescending
	cfg.MinKey = 0
	cfg.MaxKey = 2
	s := strategy.New(0, cfg, 1)

	got := []uint64{s.Key(), s.Key(), s.Key(), s.Key()}
	want := []uint64{2, 1, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestDijkstraDistributionNonDecreasing(t *testing.T) {
	cfg := strategy.DefaultConfig()
	cfg.Distribution = strategy.KeyDijkstra
	cfg.MinKey = 0
	cfg.MaxKey = 1000
	cfg.DijkstraMinIncrease = 1
	cfg.DijkstraMaxIncrease = 5
	s := strategy.New(0, cfg, 123)

	last := s.Key()
	for i := 0; i < 50; i++ {
		k := s.Key()
		if k < last {
			t.Fatalf("dijkstra distribution decreased: %d -> %d", last, k)
		}
		last = k
	}
}

func TestThreadIDDistributionConstant(t *testing.T) {
	cfg := strategy.DefaultConfig()
	cfg.Distribution = strategy.KeyThreadID
	cfg.MinKey = 0
	cfg.MaxKey = 3
	s := strategy.New(2, cfg, 1)

	first := s.Key()
	for i := 0; i < 5; i++ {
		if got := s.Key(); got != first {
			t.Fatalf("expected constant key %d, got %d", first, got)
		}
	}
}

func TestDeterministicSeeding(t *testing.T) {
	cfg := strategy.DefaultConfig()
	a := strategy.New(3, cfg, 99)
	b := strategy.New(3, cfg, 99)

	for i := 0; i < 20; i++ {
		if a.Insert() != b.Insert() {
			t.Fatalf("same seed+thread id must produce identical Insert() streams")
		}
	}
}
