// Package pq implements the relaxed concurrent priority queue abstraction:
// a SequentialHeap-backed MultiQueue with stickiness and per-handle
// buffers, plus a WrapperAdapter contract for externally provided
// skiplist-family queues (CAPQ, k-LSM, DLSM, Linden, Spraylist).
//
// Every implementation returns some element currently present in the
// multiset with bounded probabilistic rank error; none of them guarantee
// the global minimum. Callers that need strict ordering should not use
// this package.
package pq

import "errors"

// ErrWrapperInit is returned when a Wrapper's process-wide initialization
// fails. It is a fatal, startup-only error.
var ErrWrapperInit = errors.New("pq: wrapper initialization failed")

// Handle is a thread-local view onto a PriorityQueue. A Handle must not be
// shared across goroutines; its lifetime is tied to one worker.
type Handle interface {
	// Push makes (key, value) eventually extractable by some handle.
	Push(key Key, value Value)
	// TryPop reports whether it extracted some element currently in the
	// multiset. A false return means the handle's sampled shards were
	// observed empty; it does not prove the multiset is empty.
	TryPop() (key Key, value Value, ok bool)
}

// PriorityQueue is the capability set the benchmark drivers require,
// implemented by both *MultiQueue and *WrapperAdapter so that cmd/pqbench
// and cmd/sssp can select an implementation at flag-parse time instead of
// needing one binary per queue variant.
type PriorityQueue interface {
	// NewHandle returns a new per-thread Handle. threadID must be unique
	// among concurrently live handles and in [0, numThreads).
	NewHandle(threadID int) Handle
	// Description identifies the concrete queue and its configuration,
	// printed at startup the way the original logs
	// "Using priority queue: <description>".
	Description() string
}
