// Package sssp runs relaxed Dijkstra single-source-shortest-paths over a
// CSR graph using a relaxed priority queue, following the idle-detection
// termination protocol from the benchmark this package generalizes: a
// worker that empties its view of the queue does not know whether the
// whole queue is empty, so termination is decided collectively through a
// shared idle counter rather than by any one worker's local observation.
package sssp

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/mwilliams-bench/relaxq/internal/affinity"
	"github.com/mwilliams-bench/relaxq/internal/coord"
	"github.com/mwilliams-bench/relaxq/internal/graph"
	"github.com/mwilliams-bench/relaxq/internal/pq"
)

// ErrSolutionMismatch is returned when the computed distances disagree
// with the provided solution file.
var ErrSolutionMismatch = errors.New("sssp: computed distances do not match solution")

// ErrSizeMismatch is returned when the solution file's length does not
// match the graph's node count.
var ErrSizeMismatch = errors.New("sssp: solution size does not match graph size")

// retries is the number of non-blocking pop attempts a worker makes
// before joining the idle handshake, absorbing brief queue contention
// without immediately paying the cost of the termination protocol.
const retries = 400

// Worker states for the idle termination protocol. A worker only ever
// writes its own state except a waker, which may transition it from idle
// straight to active via the transient wakeup state.
const (
	stateActive  uint32 = 0
	stateSeeking uint32 = 1
	stateIdle    uint32 = 2
	stateWakeup  uint32 = 3
)

type idleState struct {
	state atomic.Uint32
	_     affinity.Pad64
}

type distanceSlot struct {
	value atomic.Uint32
	_     affinity.Pad64
}

// Result is the outcome of one SSSP run at a given thread count.
type Result struct {
	NumThreads     int
	Distances      []uint32
	NodesProcessed uint64
}

// Verify compares r's computed distances against a solution file's
// expected distances, returning ErrSizeMismatch if the lengths disagree
// or ErrSolutionMismatch if any distance differs.
func Verify(r *Result, solution []uint32) error {
	if len(r.Distances) != len(solution) {
		return ErrSizeMismatch
	}
	for i, want := range solution {
		if r.Distances[i] != want {
			return ErrSolutionMismatch
		}
	}
	return nil
}

// Run computes single-source shortest paths from node 0 using numThreads
// workers pinned via a fresh Coordinator, following the distance-CAS
// relaxation and idle-counter termination protocol. queue is expected to
// be sized for exactly numThreads concurrent handles; most wrapped queues
// are not safely resizable, so callers sweeping thread counts must build
// a fresh queue per sweep step.
func Run(g *graph.Graph, numThreads int, pinCPUs bool, queue pq.PriorityQueue) *Result {
	n := g.NumNodes()
	distances := make([]distanceSlot, n)
	for i := range distances {
		distances[i].value.Store(graph.UnreachableDistance)
	}

	idle := make([]idleState, numThreads)
	var idleCounter atomic.Uint64
	var nodesProcessed atomic.Uint64
	var startFlag atomic.Bool

	c := coord.New(numThreads, pinCPUs)
	c.Run(func(ctx coord.Context) {
		runWorker(ctx, queue, g, distances, idle, &idleCounter, &nodesProcessed, &startFlag)
	})
	c.WaitUntilNotified()
	startFlag.Store(true)
	c.Join()

	out := make([]uint32, n)
	for i := range out {
		out[i] = distances[i].value.Load()
	}
	return &Result{NumThreads: numThreads, Distances: out, NodesProcessed: nodesProcessed.Load()}
}

func runWorker(
	ctx coord.Context,
	queue pq.PriorityQueue,
	g *graph.Graph,
	distances []distanceSlot,
	idle []idleState,
	idleCounter *atomic.Uint64,
	nodesProcessed *atomic.Uint64,
	startFlag *atomic.Bool,
) {
	handle := queue.NewHandle(ctx.ID())
	var localProcessed uint64
	numThreads := ctx.NumThreads()

	if ctx.IsMain() && len(distances) > 0 {
		distances[0].value.Store(0)
		handle.Push(0, 0)
	}
	ctx.Synchronize(0, func() { ctx.NotifyCoordinator() })

	for !startFlag.Load() {
		runtime.Gosched()
	}

	for {
		key, value, found, terminate := extractOrIdle(handle, ctx.ID(), numThreads, idle, idleCounter)
		if terminate {
			break
		}
		if !found {
			continue
		}

		node := uint32(value)
		currentDistance := distances[node].value.Load()
		if uint32(key) > currentDistance {
			continue
		}
		localProcessed++

		pushed := false
		for _, e := range g.Neighbors(node) {
			newDist := currentDistance + e.Weight
			for {
				old := distances[e.Target].value.Load()
				if old <= newDist {
					break
				}
				if distances[e.Target].value.CompareAndSwap(old, newDist) {
					handle.Push(pq.Key(newDist), pq.Value(e.Target))
					pushed = true
					break
				}
			}
		}
		if pushed && idleCounter.Load() > 0 {
			wakeIdleWorkers(ctx.ID(), numThreads, idle, idleCounter)
		}
	}

	nodesProcessed.Add(localProcessed)
}

// extractOrIdle tries to pop an element, escalating through the retry
// budget and finally the idle handshake if every attempt fails. It
// returns (key, value, true, false) on success, (0, 0, false, false) if
// the caller should simply retry from the top, or (0, 0, false, true) if
// every worker is now simultaneously idle and the run should terminate.
func extractOrIdle(
	handle pq.Handle,
	id, numThreads int,
	idle []idleState,
	idleCounter *atomic.Uint64,
) (key pq.Key, value pq.Value, found, terminate bool) {
	if k, v, ok := handle.TryPop(); ok {
		return k, v, true, false
	}
	for i := 0; i < retries; i++ {
		if k, v, ok := handle.TryPop(); ok {
			return k, v, true, false
		}
		runtime.Gosched()
	}

	idle[id].state.Store(stateSeeking)
	idleCounter.Add(1)
	if k, v, ok := handle.TryPop(); ok {
		idleCounter.Add(^uint64(0)) // -1
		idle[id].state.Store(stateActive)
		return k, v, true, false
	}

	return 0, 0, false, awaitTermination(id, numThreads, idle, idleCounter)
}

// awaitTermination marks the calling worker idle and spins until either
// every worker is simultaneously idle (the run is over) or some other
// worker's push wakes this one back to active.
func awaitTermination(id, numThreads int, idle []idleState, idleCounter *atomic.Uint64) bool {
	idle[id].state.Store(stateIdle)
	idleCounter.Add(1)
	for {
		if idleCounter.Load() == 2*uint64(numThreads) {
			return true
		}
		if idle[id].state.Load() == stateActive {
			return false
		}
		runtime.Gosched()
	}
}

// wakeIdleWorkers scans every other worker after a successful push and
// transitions any that are idle back to active, undoing the two counter
// increments (seeking + idle) that worker accumulated on its way down.
func wakeIdleWorkers(id, numThreads int, idle []idleState, idleCounter *atomic.Uint64) {
	for i := 0; i < numThreads; i++ {
		if i == id {
			continue
		}
		for {
			if idle[i].state.CompareAndSwap(stateIdle, stateWakeup) {
				idleCounter.Add(^uint64(1)) // -2
				idle[i].state.Store(stateActive)
				break
			}
			cur := idle[i].state.Load()
			if cur == stateActive || cur == stateWakeup {
				break
			}
			runtime.Gosched()
		}
	}
}
