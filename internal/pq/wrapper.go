package pq

import (
	"fmt"
	"sync"
)

// WrapperHandle is the per-thread handle a wrapped external queue exposes.
// It is intentionally narrower than Handle's stickiness/buffering
// machinery: external skiplist-family queues manage their own internal
// relaxation and expose only push/try_pop.
type WrapperHandle interface {
	Push(key Key, value Value)
	TryPop() (Key, Value, bool)
}

// WrapperFactory builds the underlying external queue's per-thread handle.
// Implementations embed whatever is needed to reach the shared structure
// (e.g. a pointer to a skiplist or a GC-managed data structure).
type WrapperFactory interface {
	// Init performs process-wide setup (e.g. the Linden GC subsystem).
	// Init is called once, the first time any wrapper referencing this
	// factory is constructed.
	Init() error
	// Close performs process-wide teardown. Close is called once, when
	// the last live wrapper referencing this factory is closed.
	Close()
	// NewWrapperHandle returns a new per-thread handle. If the
	// underlying library requires per-thread setup (Spraylist's
	// init_thread), NewWrapperHandle performs it.
	NewWrapperHandle(threadID, numThreads int) WrapperHandle
	// Name identifies the wrapped queue for Description().
	Name() string
}

// gcLifetime reference-counts a process-wide singleton resource shared by
// every live WrapperAdapter backed by the same WrapperFactory, modeling
// the Linden GC subsystem's explicit init-on-first/teardown-on-last
// contract without allowing more than one live underlying instance unless
// the factory itself supports it.
type gcLifetime struct {
	mu   sync.Mutex
	refs int
}

func (g *gcLifetime) acquire(init func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refs == 0 {
		if err := init(); err != nil {
			return err
		}
	}
	g.refs++
	return nil
}

func (g *gcLifetime) release(teardown func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refs--
	if g.refs <= 0 {
		g.refs = 0
		teardown()
	}
}

// WrapperAdapter implements PriorityQueue over a WrapperFactory, applying
// the mandatory adapter behaviors external skiplist-family queues require:
// per-construction init/teardown reference counting and a gated capability
// flag surfaced via IsWrapper so callers can branch on wrapper-specific
// benchmark behavior (e.g. SSSP's partition-scoped pop fallback, which
// wrapper adapters skip in favor of a plain retry).
type WrapperAdapter struct {
	factory    WrapperFactory
	numThreads int
	lifetime   *gcLifetime
}

// NewWrapperAdapter constructs a WrapperAdapter, running the factory's
// process-wide Init if this is the first live instance sharing lifetime.
func NewWrapperAdapter(factory WrapperFactory, numThreads int, lifetime *gcLifetime) (*WrapperAdapter, error) {
	if lifetime == nil {
		lifetime = &gcLifetime{}
	}
	if err := lifetime.acquire(factory.Init); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWrapperInit, factory.Name(), err)
	}
	return &WrapperAdapter{factory: factory, numThreads: numThreads, lifetime: lifetime}, nil
}

// Close releases this adapter's reference on the shared lifetime, running
// the factory's process-wide teardown once the last reference is gone.
func (w *WrapperAdapter) Close() {
	w.lifetime.release(w.factory.Close)
}

// Description implements PriorityQueue.
func (w *WrapperAdapter) Description() string {
	return fmt.Sprintf("wrapper(%s)", w.factory.Name())
}

// NewHandle implements PriorityQueue.
func (w *WrapperAdapter) NewHandle(threadID int) Handle {
	return wrapperHandleAdapter{inner: w.factory.NewWrapperHandle(threadID, w.numThreads)}
}

// IsWrapper is true for every WrapperAdapter, used by drivers to gate
// wrapper-only code paths.
func (w *WrapperAdapter) IsWrapper() bool { return true }

// wrapperHandleAdapter adapts a WrapperHandle to the Handle interface.
type wrapperHandleAdapter struct{ inner WrapperHandle }

func (a wrapperHandleAdapter) Push(key Key, value Value)  { a.inner.Push(key, value) }
func (a wrapperHandleAdapter) TryPop() (Key, Value, bool) { return a.inner.TryPop() }
