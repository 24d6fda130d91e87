package pq

import (
	"math"
	"sync"
)

// lindenSentinel is the value the underlying skiplist returns from
// deletemin on an empty structure. The real Linden library reserves key 0
// for internal bookkeeping, which is why every pushed key is shifted by
// +1 and every popped key shifted back by -1; this adapter's in-process
// stand-in preserves that shift so the contract (and its "keys never
// equal the sentinel" invariant, see spec Open Questions) is exercised
// exactly as the real wrapper would require.
const lindenSentinel = math.MaxUint64

// lindenStore is the in-process stand-in for the external Linden skiplist:
// a single mutex-guarded sequential heap shared by every handle, since the
// real library itself is out of scope and only its adapter contract is
// specified here.
type lindenStore struct {
	mu   sync.Mutex
	heap *SequentialHeap
}

// LindenStyleAdapter is a WrapperFactory reproducing the mandatory Linden
// wrapper behaviors: a process-wide GC subsystem requiring explicit
// init/teardown, a +1/-1 key shift around the underlying structure's
// reserved key 0, a sentinel return value on empty pop, and a sacrificial
// insert performed before teardown to avoid a crash in the underlying
// library.
type LindenStyleAdapter struct {
	store *lindenStore
}

// NewLindenStyleAdapter returns a fresh LindenStyleAdapter factory.
func NewLindenStyleAdapter() *LindenStyleAdapter {
	return &LindenStyleAdapter{}
}

// Init implements WrapperFactory: initializes the process-wide GC
// subsystem stand-in and the shared skiplist stand-in.
func (l *LindenStyleAdapter) Init() error {
	l.store = &lindenStore{heap: NewSequentialHeap(DefaultArity)}
	return nil
}

// Close implements WrapperFactory: inserts one sacrificial element before
// destroying the structure, exactly as the real wrapper's destructor does
// ("a destructor must insert one element before destroying to avoid a
// crash in the underlying library"), then tears down the GC stand-in.
func (l *LindenStyleAdapter) Close() {
	l.store.mu.Lock()
	l.store.heap.Push(1, 1)
	l.store.mu.Unlock()
	l.store = nil
}

// Name implements WrapperFactory.
func (l *LindenStyleAdapter) Name() string { return "linden" }

// NewWrapperHandle implements WrapperFactory. Linden handles share the
// single process-wide structure directly; numThreads is unused (Linden
// requires no per-thread init, unlike Spraylist).
func (l *LindenStyleAdapter) NewWrapperHandle(_ int, _ int) WrapperHandle {
	return &lindenHandle{store: l.store}
}

type lindenHandle struct{ store *lindenStore }

// Push implements WrapperHandle, shifting the key by +1 before insertion
// because the underlying structure reserves key 0.
func (h *lindenHandle) Push(key Key, value Value) {
	h.store.mu.Lock()
	h.store.heap.Push(key+1, value)
	h.store.mu.Unlock()
}

// TryPop implements WrapperHandle, shifting the returned key back by -1
// and treating lindenSentinel as the empty signal.
func (h *lindenHandle) TryPop() (Key, Value, bool) {
	h.store.mu.Lock()
	k, v, ok := h.store.heap.Pop()
	h.store.mu.Unlock()
	if !ok {
		return 0, 0, false
	}
	if k == lindenSentinel {
		return 0, 0, false
	}
	return k - 1, v, true
}
