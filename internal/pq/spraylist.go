package pq

import "sync"

// spraylistStore is the in-process stand-in for the external Spraylist
// skiplist: a mutex-guarded sequential heap shared by every handle. The
// real library itself is out of scope; only its adapter contract (mandatory
// per-thread init_thread before first use) is reproduced here.
type spraylistStore struct {
	mu   sync.Mutex
	heap *SequentialHeap
}

// SpraylistStyleAdapter is a WrapperFactory reproducing the Spraylist
// adapter contract: no process-wide GC subsystem, but every handle must
// call InitThread(numThreads) before its first push or pop.
type SpraylistStyleAdapter struct {
	store *spraylistStore
}

// NewSpraylistStyleAdapter returns a fresh SpraylistStyleAdapter factory.
func NewSpraylistStyleAdapter() *SpraylistStyleAdapter {
	return &SpraylistStyleAdapter{}
}

// Init implements WrapperFactory. Spraylist has no process-wide GC
// subsystem, only the shared structure itself.
func (s *SpraylistStyleAdapter) Init() error {
	s.store = &spraylistStore{heap: NewSequentialHeap(DefaultArity)}
	return nil
}

// Close implements WrapperFactory.
func (s *SpraylistStyleAdapter) Close() { s.store = nil }

// Name implements WrapperFactory.
func (s *SpraylistStyleAdapter) Name() string { return "spraylist" }

// NewWrapperHandle implements WrapperFactory, performing the mandatory
// per-thread init_thread(numThreads) call before returning the handle.
func (s *SpraylistStyleAdapter) NewWrapperHandle(threadID, numThreads int) WrapperHandle {
	h := &spraylistHandle{store: s.store}
	h.initThread(numThreads)
	return h
}

type spraylistHandle struct {
	store      *spraylistStore
	numThreads int
}

// initThread reproduces Spraylist's mandatory per-thread setup
// (pq.init_thread(num_threads)), required before the first use of a
// handle.
func (h *spraylistHandle) initThread(numThreads int) {
	h.numThreads = numThreads
}

func (h *spraylistHandle) Push(key Key, value Value) {
	h.store.mu.Lock()
	h.store.heap.Push(key, value)
	h.store.mu.Unlock()
}

func (h *spraylistHandle) TryPop() (Key, Value, bool) {
	h.store.mu.Lock()
	k, v, ok := h.store.heap.Pop()
	h.store.mu.Unlock()
	return k, v, ok
}
