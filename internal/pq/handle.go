package pq

import (
	"math/rand/v2"
	"sort"

	"github.com/mwilliams-bench/relaxq/internal/queue"
)

// mqHandle is the MultiQueue's Handle implementation: per-thread RNG,
// stickiness bookkeeping for push and pop independently, and optional
// insertion/deletion buffers.
type mqHandle struct {
	mq       *MultiQueue
	threadID int
	rng      *rand.Rand

	pushSticky int
	pushBudget int
	popSticky  int
	popBudget  int

	// insertBuf backs the Ibs>0 insertion buffer. It reuses the
	// teacher's lock-free ring buffer as a plain single-owner FIFO: no
	// concurrent access ever happens here (the handle is owned by one
	// goroutine), but the ring's power-of-two masking and Len/Cap
	// bookkeeping are exactly what a tiny fixed-capacity FIFO needs.
	insertBuf    *queue.RingBuffer[entry]
	insertBufCap int

	// deleteBuf backs the Dbs>0 deletion buffer: a small slice kept
	// sorted ascending by key so TryPop can always return data[0].
	deleteBuf []entry
}

func (h *mqHandle) initInsertBuf(capacity int) {
	if capacity > 0 {
		h.insertBuf = queue.NewRingBuffer[entry](capacity)
		h.insertBufCap = capacity
	}
}

// Push implements Handle.
func (h *mqHandle) Push(key Key, value Value) {
	if h.mq.cfg.InsertBufferSize > 0 {
		if h.insertBuf == nil {
			h.initInsertBuf(h.mq.cfg.InsertBufferSize)
		}
		if !h.insertBuf.Push(entry{key: key, value: value}) {
			// Buffer filled up since the last flush; drain it now and
			// retry the push against the now-empty buffer.
			h.flushInsertBuf()
			h.insertBuf.Push(entry{key: key, value: value})
			return
		}
		if h.insertBuf.Len() == h.insertBuf.Cap() {
			h.flushInsertBuf()
		}
		return
	}
	h.pushDirect(key, value)
}

// flushInsertBuf drains the insertion buffer into a single shard acquired
// once, amortizing shard-lock latency across all buffered items.
func (h *mqHandle) flushInsertBuf() {
	shard := h.acquireShardForPush()
	for {
		e, ok := h.insertBuf.Pop()
		if !ok {
			break
		}
		shard.Push(e.key, e.value)
	}
	shard.Unlock()
}

// acquireShardForPush runs the two-choice push selection and returns a
// locked shard, honoring and updating stickiness.
func (h *mqHandle) acquireShardForPush() *Shard {
	if h.pushBudget > 0 {
		s := h.mq.shards[h.pushSticky]
		if s.TryLock() {
			h.pushBudget--
			if h.pushBudget == 0 {
				h.pushSticky = -1
			}
			return s
		}
		h.pushBudget--
		if h.pushBudget <= 0 {
			h.pushSticky = -1
		}
	}
	for attempt := 0; attempt < maxSelectionAttempts; attempt++ {
		i, j := h.sample2()
		si, sj := h.mq.shards[i], h.mq.shards[j]
		first, second, firstIdx, secondIdx := si, sj, i, j
		if sj.TopKey() > si.TopKey() {
			first, second, firstIdx, secondIdx = sj, si, j, i
		}
		if first.TryLock() {
			h.pushSticky = firstIdx
			h.pushBudget = h.mq.cfg.StickinessK - 1
			return first
		}
		if second.TryLock() {
			h.pushSticky = secondIdx
			h.pushBudget = h.mq.cfg.StickinessK - 1
			return second
		}
	}
	// Last resort: every sampled shard has been contended for
	// maxSelectionAttempts rounds. Spin on a single fixed shard; push
	// must never fail, only retry.
	s := h.mq.shards[0]
	for !s.TryLock() {
	}
	h.pushSticky = 0
	h.pushBudget = h.mq.cfg.StickinessK - 1
	return s
}

func (h *mqHandle) pushDirect(key, value Key) {
	shard := h.acquireShardForPush()
	shard.Push(key, value)
	shard.Unlock()
}

// TryPop implements Handle.
func (h *mqHandle) TryPop() (Key, Value, bool) {
	if h.mq.cfg.DeleteBufferSize > 0 {
		if len(h.deleteBuf) > 0 {
			e := h.deleteBuf[0]
			h.deleteBuf = h.deleteBuf[1:]
			return e.key, e.value, true
		}
		if h.refillDeleteBuf() {
			e := h.deleteBuf[0]
			h.deleteBuf = h.deleteBuf[1:]
			return e.key, e.value, true
		}
		return 0, 0, false
	}
	return h.popDirect()
}

// refillDeleteBuf pops the root of a chosen shard, then, while still
// holding that shard's lock, pops up to DeleteBufferSize-1 additional
// entries, and sorts the result ascending by key.
func (h *mqHandle) refillDeleteBuf() bool {
	shard, key, value, ok := h.acquireShardForPop()
	if !ok {
		return false
	}
	h.deleteBuf = h.deleteBuf[:0]
	h.deleteBuf = append(h.deleteBuf, entry{key: key, value: value})
	for len(h.deleteBuf) < h.mq.cfg.DeleteBufferSize {
		k, v, ok := shard.Pop()
		if !ok {
			break
		}
		h.deleteBuf = append(h.deleteBuf, entry{key: k, value: v})
	}
	shard.Unlock()
	sort.Slice(h.deleteBuf, func(i, j int) bool { return h.deleteBuf[i].key < h.deleteBuf[j].key })
	return true
}

func (h *mqHandle) popDirect() (Key, Value, bool) {
	shard, key, value, ok := h.acquireShardForPop()
	if !ok {
		return 0, 0, false
	}
	shard.Unlock()
	return key, value, true
}

// acquireShardForPop runs the two-choice pop selection, honoring and
// updating stickiness. On success it returns the still-locked shard along
// with the popped entry so refillDeleteBuf can keep popping from it; the
// caller is responsible for Unlock.
func (h *mqHandle) acquireShardForPop() (*Shard, Key, Value, bool) {
	if h.popBudget > 0 {
		s := h.mq.shards[h.popSticky]
		if s.TryLock() {
			k, v, ok := s.Pop()
			if ok {
				h.popBudget--
				if h.popBudget == 0 {
					h.popSticky = -1
				}
				return s, k, v, true
			}
			s.Unlock()
		}
		h.popBudget--
		if h.popBudget <= 0 {
			h.popSticky = -1
		}
	}
	for attempt := 0; attempt < maxSelectionAttempts; attempt++ {
		i, j := h.sample2()
		si, sj := h.mq.shards[i], h.mq.shards[j]
		ki, kj := si.TopKey(), sj.TopKey()
		iEmpty, jEmpty := IsEmptyTopKey(ki), IsEmptyTopKey(kj)
		if iEmpty && jEmpty {
			return nil, 0, 0, false
		}
		var chosen *Shard
		var chosenIdx int
		switch {
		case iEmpty:
			chosen, chosenIdx = sj, j
		case jEmpty:
			chosen, chosenIdx = si, i
		case ki <= kj:
			chosen, chosenIdx = si, i
		default:
			chosen, chosenIdx = sj, j
		}
		if !chosen.TryLock() {
			continue
		}
		k, v, ok := chosen.Pop()
		if !ok {
			// Shard emptied between the non-blocking top_key read and
			// the lock; publish the now-accurate empty state and
			// resample rather than returning false prematurely.
			chosen.Unlock()
			continue
		}
		h.popSticky = chosenIdx
		h.popBudget = h.mq.cfg.StickinessK - 1
		return chosen, k, v, true
	}
	return nil, 0, 0, false
}
