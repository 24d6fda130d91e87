package pq

// Key is the priority queue's key type. Smaller keys have higher priority.
type Key = uint64

// Value is the priority queue's payload type.
type Value = uint64

// entry is a single (key, value) pair stored in a shard's heap.
type entry struct {
	key   Key
	value Value
}

// DefaultArity is the default branching factor of SequentialHeap.
const DefaultArity = 8

// SequentialHeap is a d-ary min-heap over (key, value) pairs. It is not
// safe for concurrent use; callers hold the owning Shard's try-lock for the
// duration of any call.
type SequentialHeap struct {
	arity int
	data  []entry
}

// NewSequentialHeap creates an empty heap with the given branching factor.
// arity <= 1 is treated as DefaultArity.
func NewSequentialHeap(arity int) *SequentialHeap {
	if arity <= 1 {
		arity = DefaultArity
	}
	return &SequentialHeap{arity: arity}
}

// Len returns the number of entries currently stored.
func (h *SequentialHeap) Len() int { return len(h.data) }

// Top returns the current minimum entry without removing it.
func (h *SequentialHeap) Top() (Key, Value, bool) {
	if len(h.data) == 0 {
		return 0, 0, false
	}
	e := h.data[0]
	return e.key, e.value, true
}

// Push inserts (key, value) and restores the heap property by sifting up.
func (h *SequentialHeap) Push(key Key, value Value) {
	h.data = append(h.data, entry{key: key, value: value})
	h.siftUp(len(h.data) - 1)
}

// Pop removes and returns the minimum entry, or reports empty.
//
// The root is filled with the last leaf, which is then sifted down via a
// hole-and-fill descent: at each level the hole moves to whichever child
// has the smaller key, until no child is smaller than the value being
// placed.
func (h *SequentialHeap) Pop() (Key, Value, bool) {
	n := len(h.data)
	if n == 0 {
		return 0, 0, false
	}
	top := h.data[0]
	last := h.data[n-1]
	h.data = h.data[:n-1]
	if len(h.data) > 0 {
		h.data[0] = last
		h.siftDown(0)
	}
	return top.key, top.value, true
}

func (h *SequentialHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / h.arity
		if h.data[i].key >= h.data[parent].key {
			break
		}
		h.data[i], h.data[parent] = h.data[parent], h.data[i]
		i = parent
	}
}

func (h *SequentialHeap) siftDown(i int) {
	n := len(h.data)
	for {
		firstChild := i*h.arity + 1
		if firstChild >= n {
			return
		}
		minChild := firstChild
		minKey := h.data[firstChild].key
		last := firstChild + h.arity
		if last > n {
			last = n
		}
		for c := firstChild + 1; c < last; c++ {
			if h.data[c].key < minKey {
				minChild = c
				minKey = h.data[c].key
			}
		}
		if minKey >= h.data[i].key {
			return
		}
		h.data[i], h.data[minChild] = h.data[minChild], h.data[i]
		i = minChild
	}
}
