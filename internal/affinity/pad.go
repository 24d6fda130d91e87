package affinity

// Pad64 is a fixed 64-byte filler field, the same cache-line padding idiom
// queue.RingBuffer uses around its head/tail atomics (_pad0/_pad1/_pad2
// []byte fields), reused here for every cross-thread atomic that needs its
// own cache line: shard top keys, start/stop flags, the idle counter and
// per-thread idle state, and the throughput driver's dummy sink.
type Pad64 [64]byte
