package pq

import (
	"fmt"
	"math/rand/v2"
)

// maxSelectionAttempts bounds the resample loop used by two-choice
// push/pop before falling back to a blocking last resort. Lock contention
// on a well-sized MultiQueue resolves in a handful of attempts; this bound
// only guards against pathological configurations (e.g. NumThreads=1,
// C=1) spinning unboundedly on unlucky sampling.
const maxSelectionAttempts = 64

// MultiQueue is a random two-choice multi-queue over C*NumThreads
// sequential heaps, protected by per-shard try-locks, with optional
// per-handle stickiness and insertion/deletion buffering.
type MultiQueue struct {
	cfg        Config
	numThreads int
	shards     []*Shard
	seed       uint64
}

// New builds a MultiQueue with numThreads*cfg.ShardsPerThread shards.
func New(numThreads int, seed uint64, cfg Config) *MultiQueue {
	if numThreads <= 0 {
		numThreads = 1
	}
	cfg = cfg.normalized()
	mq := &MultiQueue{
		cfg:        cfg,
		numThreads: numThreads,
		seed:       seed,
	}
	total := numThreads * cfg.ShardsPerThread
	mq.shards = make([]*Shard, total)
	for i := range mq.shards {
		mq.shards[i] = NewShard(cfg.HeapArity)
	}
	return mq
}

// Description implements PriorityQueue.
func (mq *MultiQueue) Description() string {
	return fmt.Sprintf(
		"multiqueue(shards=%d, C=%d, K=%d, Ibs=%d, Dbs=%d, arity=%d, numa=%t)",
		len(mq.shards), mq.cfg.ShardsPerThread, mq.cfg.StickinessK,
		mq.cfg.InsertBufferSize, mq.cfg.DeleteBufferSize, mq.cfg.HeapArity,
		mq.cfg.NumaFriendly,
	)
}

// NewHandle implements PriorityQueue.
func (mq *MultiQueue) NewHandle(threadID int) Handle {
	h := &mqHandle{
		mq:         mq,
		threadID:   threadID,
		rng:        rand.New(rand.NewPCG(mq.seed, uint64(threadID))),
		pushSticky: -1,
		popSticky:  -1,
	}
	if mq.cfg.InsertBufferSize > 0 {
		h.insertBuf = make([]entry, 0, mq.cfg.InsertBufferSize)
	}
	if mq.cfg.DeleteBufferSize > 0 {
		h.deleteBuf = make([]entry, 0, mq.cfg.DeleteBufferSize)
	}
	return h
}

// numShards returns the total shard count.
func (mq *MultiQueue) numShards() int { return len(mq.shards) }

// sample2 draws two candidate shard indices for a handle. If NumaFriendly
// is set, one candidate is biased toward the calling handle's own thread's
// local shard range, approximating NUMA locality without true per-node
// allocation.
func (h *mqHandle) sample2() (int, int) {
	n := h.mq.numShards()
	if n == 1 {
		return 0, 0
	}
	i := h.rng.IntN(n)
	j := h.rng.IntN(n)
	if h.mq.cfg.NumaFriendly {
		c := h.mq.cfg.ShardsPerThread
		base := (h.threadID % h.mq.numThreads) * c
		i = base + h.rng.IntN(c)
	}
	for j == i && n > 1 {
		j = h.rng.IntN(n)
	}
	return i, j
}
