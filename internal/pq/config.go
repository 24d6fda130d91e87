package pq

// Config holds the tunables for a MultiQueue, mirroring the
// multiqueue::configuration knobs (C, K, buffer sizes, NUMA mode) the
// original selects at compile time via a template Config struct.
type Config struct {
	// ShardsPerThread (C) is the number of shards allocated per worker
	// thread; total shard count is ShardsPerThread * NumThreads.
	ShardsPerThread int
	// StickinessK is the number of consecutive operations of the same
	// kind (push or pop) a handle will keep reusing its last successful
	// shard before resampling.
	StickinessK int
	// InsertBufferSize (Ibs) is the per-handle insertion buffer
	// capacity; 0 disables buffering.
	InsertBufferSize int
	// DeleteBufferSize (Dbs) is the per-handle deletion buffer
	// capacity; 0 disables buffering.
	DeleteBufferSize int
	// HeapArity is the branching factor of each shard's SequentialHeap.
	HeapArity int
	// NumaFriendly, when true, restricts a handle's shard sampling to
	// the shards owned by its own thread plus one cross-thread choice,
	// instead of sampling uniformly over all shards. Reserved for
	// NUMA-aware deployments; the reference implementation here applies
	// it as a sampling-bias hint rather than true NUMA-local allocation.
	NumaFriendly bool
}

// DefaultConfig returns the suggested defaults: C=4, K=8, no buffering,
// 8-ary heaps.
func DefaultConfig() Config {
	return Config{
		ShardsPerThread:  4,
		StickinessK:      8,
		InsertBufferSize: 0,
		DeleteBufferSize: 0,
		HeapArity:        DefaultArity,
	}
}

func (c Config) normalized() Config {
	if c.ShardsPerThread <= 0 {
		c.ShardsPerThread = 1
	}
	if c.StickinessK <= 0 {
		c.StickinessK = 1
	}
	if c.HeapArity <= 1 {
		c.HeapArity = DefaultArity
	}
	if c.InsertBufferSize < 0 {
		c.InsertBufferSize = 0
	}
	if c.DeleteBufferSize < 0 {
		c.DeleteBufferSize = 0
	}
	return c
}
