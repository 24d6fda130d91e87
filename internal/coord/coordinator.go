// Package coord provides the thread-coordination substrate the benchmark
// drivers run on: pinned worker goroutines, a numbered barrier with a
// single elected leader per stage, a start-notification handshake between
// workers and the main goroutine, and block-wise dynamic scheduling for
// the stress and SSSP drivers.
package coord

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mwilliams-bench/relaxq/internal/affinity"
)

// Context is a worker's view of the coordinator: its id, the total thread
// count, and the synchronization primitives a worker needs to cooperate
// with the rest of the run.
type Context struct {
	id          int
	numThreads  int
	coordinator *Coordinator
}

// ID returns this worker's thread id in [0, NumThreads()).
func (c Context) ID() int { return c.id }

// NumThreads returns the total number of workers in this run.
func (c Context) NumThreads() int { return c.numThreads }

// IsMain reports whether this context is thread 0, the elected leader for
// one-shot setup work (prefill, startup logging).
func (c Context) IsMain() bool { return c.id == 0 }

// Synchronize blocks until every worker has reached this numbered stage,
// running leader exactly once (elected as "last worker to arrive") before
// releasing everyone. stage numbers must increase monotonically per
// worker and be called the same number of times by every worker.
func (c Context) Synchronize(stage int, leader func()) {
	c.coordinator.barrier(stage, leader)
}

// NotifyCoordinator signals the main goroutine that per-worker startup is
// complete; paired with (*Coordinator).WaitUntilNotified. Only intended to
// be called once, by the stage-0 barrier leader.
func (c Context) NotifyCoordinator() {
	c.coordinator.notifyOnce.Do(func() { close(c.coordinator.notifyCh) })
}

// Coordinator spawns, pins, and synchronizes a fixed set of worker
// goroutines for one benchmark run.
type Coordinator struct {
	numThreads int
	pin        bool

	wg      sync.WaitGroup
	errOnce sync.Once
	errCh   chan error

	mu       sync.Mutex
	cond     *sync.Cond
	stage    int
	arrived  int
	released int

	notifyCh   chan struct{}
	notifyOnce sync.Once
}

// New creates a Coordinator for numThreads workers. When pin is true,
// each worker locks its OS thread and sets its CPU affinity to its thread
// id, logging (not failing) if that is unsupported.
func New(numThreads int, pin bool) *Coordinator {
	c := &Coordinator{
		numThreads: numThreads,
		pin:        pin,
		errCh:      make(chan error, numThreads),
		notifyCh:   make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Run spawns one goroutine per worker and calls task with that worker's
// Context. Run does not block; call Join to wait for completion.
func (c *Coordinator) Run(task func(ctx Context)) {
	c.wg.Add(c.numThreads)
	for id := 0; id < c.numThreads; id++ {
		go func(id int) {
			defer c.wg.Done()
			if c.pin {
				if err := affinity.Pin(id % runtime.NumCPU()); err != nil {
					log.Printf("coord: worker %d: cpu pinning unavailable: %v", id, err)
				}
			}
			task(Context{id: id, numThreads: c.numThreads, coordinator: c})
		}(id)
	}
}

// ReportError records a fatal per-worker error. Only the first error per
// run is kept; later ones are dropped. Workers must never panic across the
// goroutine boundary for an expected runtime condition — ReportError is
// for genuinely fatal conditions (wrapper init failure, malformed input).
func (c *Coordinator) ReportError(err error) {
	select {
	case c.errCh <- err:
	default:
	}
}

// Join waits for every worker to return and reports the first error any
// worker recorded via ReportError, or nil if none did.
func (c *Coordinator) Join() error {
	c.wg.Wait()
	select {
	case err := <-c.errCh:
		return err
	default:
		return nil
	}
}

// WaitUntilNotified blocks until a worker calls Context.NotifyCoordinator.
// Intended to be called once, by the driving goroutine, between Run and
// arming the start flag.
func (c *Coordinator) WaitUntilNotified() {
	<-c.notifyCh
}

// barrier implements the numbered rendezvous: every worker calls this with
// the same stage number in increasing order; the worker that arrives last
// runs leader(), then all workers are released together.
func (c *Coordinator) barrier(stage int, leader func()) {
	c.mu.Lock()
	for c.stage != stage {
		c.cond.Wait()
	}
	c.arrived++
	if c.arrived < c.numThreads {
		target := c.released + 1
		for c.released < target {
			c.cond.Wait()
		}
	} else {
		if leader != nil {
			leader()
		}
		c.arrived = 0
		c.stage++
		c.released++
		c.cond.Broadcast()
	}
	c.mu.Unlock()
}

// ExecuteSynchronized runs fn once per worker inside a pair of barriers so
// that the returned (start, end) interval brackets every worker's
// execution of fn, not just the calling worker's. The interval is sampled
// once, by whichever worker happens to be the barrier leader on each side,
// from a single local variable read exactly once — deliberately avoiding
// the original's Result::update_work_time bug, where a second CAS loop
// reads start_time but compares it against a value sampled from
// end_time's source.
func (c *Coordinator) ExecuteSynchronized(ctx Context, stage int, fn func()) (time.Time, time.Time) {
	var start, end time.Time
	ctx.Synchronize(stage, func() { start = time.Now() })
	fn()
	ctx.Synchronize(stage+1, func() { end = time.Now() })
	return start, end
}

// BlockSize is the default unit of work a worker claims at a time from a
// shared blockwise counter.
const BlockSize = 4096

// BlockScheduler hands out [begin, begin+count) index ranges from a shared
// atomic counter until n indices have been claimed, giving dynamic load
// balancing across workers without per-operation coordination.
type BlockScheduler struct {
	next      atomic.Uint64
	_         affinity.Pad64
	n         uint64
	blockSize uint64
}

// NewBlockScheduler creates a scheduler over [0, n) with the given block
// size (BlockSize if blockSize <= 0).
func NewBlockScheduler(n uint64, blockSize int) *BlockScheduler {
	if blockSize <= 0 {
		blockSize = BlockSize
	}
	return &BlockScheduler{n: n, blockSize: uint64(blockSize)}
}

// Next claims the next block, returning its [begin, begin+count) range and
// true, or (0, 0, false) once all n indices have been claimed.
func (b *BlockScheduler) Next() (begin, count uint64, ok bool) {
	start := b.next.Add(b.blockSize) - b.blockSize
	if start >= b.n {
		return 0, 0, false
	}
	end := start + b.blockSize
	if end > b.n {
		end = b.n
	}
	return start, end - start, true
}

// ExecuteSynchronizedBlockwise runs fn(begin, count) against successive
// blocks claimed from sched, inside the same start/end barrier pair as
// ExecuteSynchronized. sched must be the same instance across every
// worker calling this for a given stage — construct it once with
// NewBlockScheduler before Run and capture it in each worker's closure,
// so that blocks are actually divided among workers rather than each
// worker redundantly claiming the whole range.
func (c *Coordinator) ExecuteSynchronizedBlockwise(ctx Context, stage int, sched *BlockScheduler, fn func(begin, count uint64)) (time.Time, time.Time) {
	return c.ExecuteSynchronized(ctx, stage, func() {
		for {
			begin, count, ok := sched.Next()
			if !ok {
				return
			}
			fn(begin, count)
		}
	})
}
