package pq

import (
	"math"
	"sync/atomic"

	"github.com/mwilliams-bench/relaxq/internal/affinity"
)

// emptyTopKey is the published top_key sentinel for an empty shard: larger
// than any real key so a two-choice push always prefers a full shard over
// an empty one, and a two-choice pop never mistakes an empty shard for the
// global minimum.
const emptyTopKey Key = math.MaxUint64

// Shard wraps a SequentialHeap with a try-lock and a lock-free published
// top key, padded so the hot lock word and topKey word each own a cache
// line and never false-share with a neighboring shard.
type Shard struct {
	locked atomic.Uint32
	_      affinity.Pad64

	topKey atomic.Uint64
	_      affinity.Pad64

	heap *SequentialHeap
}

// NewShard creates an empty, unlocked shard with heaps of the given arity.
func NewShard(arity int) *Shard {
	s := &Shard{heap: NewSequentialHeap(arity)}
	s.topKey.Store(uint64(emptyTopKey))
	return s
}

// TryLock attempts to acquire the shard. It may spuriously fail under
// contention; callers must be prepared to retry with a fresh choice of
// shard rather than spin on this one.
func (s *Shard) TryLock() bool {
	return s.locked.CompareAndSwap(0, 1)
}

// Unlock publishes the new top key with release semantics and then clears
// the lock. The caller must hold the lock.
func (s *Shard) Unlock() {
	key, _, ok := s.heap.Top()
	if !ok {
		key = emptyTopKey
	}
	s.topKey.Store(uint64(key))
	s.locked.Store(0)
}

// TopKey returns the shard's last published top key without locking. An
// empty shard (or a shard observed mid-update) publishes emptyTopKey.
func (s *Shard) TopKey() Key {
	return Key(s.topKey.Load())
}

// IsEmptyTopKey reports whether a top key value denotes "no real minimum".
func IsEmptyTopKey(k Key) bool { return k == emptyTopKey }

// Push inserts (key, value) into the shard's heap. The caller must hold
// the lock; Push does not publish the new top key, Unlock does.
func (s *Shard) Push(key Key, value Value) {
	s.heap.Push(key, value)
}

// Pop removes and returns the shard's minimum. The caller must hold the
// lock; Pop does not publish the new top key, Unlock does.
func (s *Shard) Pop() (Key, Value, bool) {
	return s.heap.Pop()
}

// Len returns the number of entries in the shard. The caller must hold the
// lock, or accept a stale read for diagnostics only.
func (s *Shard) Len() int {
	return s.heap.Len()
}
