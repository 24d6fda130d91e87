// Package stress implements the two stress-test modes: throughput, which
// runs a fixed wall-clock duration and reports aggregate operation
// counts, and quality, which runs until a minimum number of deletions
// have completed and records a timestamped trace of every operation for
// offline rank-error analysis.
package stress

import (
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/mwilliams-bench/relaxq/internal/cancel"
	"github.com/mwilliams-bench/relaxq/internal/coord"
	"github.com/mwilliams-bench/relaxq/internal/eventlog"
	"github.com/mwilliams-bench/relaxq/internal/pq"
	"github.com/mwilliams-bench/relaxq/internal/strategy"
	"github.com/mwilliams-bench/relaxq/internal/tick"
)

// bitsForThreadID is the width of the thread-id field packed into a
// quality-mode value's high bits; it bounds quality mode to 255 worker
// threads, since thread id 0 must stay distinguishable from "no producer".
const bitsForThreadID = 8

const valueMask = ^uint64(0) >> bitsForThreadID

// ToValue packs a thread id and a per-thread element sequence number into
// one value, so a deletion log entry can recover which thread inserted
// the element it popped without a side table.
func ToValue(threadID int, elemID uint64) uint64 {
	return uint64(threadID)<<(64-bitsForThreadID) | (elemID & valueMask)
}

// FromValue unpacks a value produced by ToValue.
func FromValue(value uint64) (threadID int, elemID uint64) {
	return int(value >> (64 - bitsForThreadID)), value & valueMask
}

// Settings bundles the parameters shared by both stress modes.
type Settings struct {
	PrefillSize    uint64
	NumThreads     int
	SleepBetweenOp time.Duration
	Seed           uint64
	PinCPUs        bool
	Insert         strategy.Config
}

// ThroughputResult is the aggregate outcome of a throughput-mode run.
type ThroughputResult struct {
	Insertions      uint64
	Deletions       uint64
	FailedDeletions uint64
	Elapsed         time.Duration
}

// OpsPerSecond is the combined insert+delete operation rate.
func (r ThroughputResult) OpsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Insertions+r.Deletions) / r.Elapsed.Seconds()
}

// RunThroughput prefills queue, then runs numThreads workers until
// duration elapses or stop is cancelled, whichever comes first, and
// returns the aggregate op counts. queue must already be sized for
// settings.NumThreads handles. If stop is nil, RunThroughput creates its
// own, used only to retire the timer; pass a caller-owned
// *cancel.AtomicCanceler to support cancelling the run early (e.g. on
// SIGINT) from outside this call.
func RunThroughput(settings Settings, duration time.Duration, queue pq.PriorityQueue, stop *cancel.AtomicCanceler) ThroughputResult {
	if stop == nil {
		stop = cancel.NewAtomic()
	}
	var numInsertions, numDeletions, numFailedDeletions atomic.Uint64
	var startFlag atomic.Bool

	c := coord.New(settings.NumThreads, settings.PinCPUs)
	c.Run(func(ctx coord.Context) {
		runThroughputWorker(ctx, queue, settings, &startFlag, stop, &numInsertions, &numDeletions, &numFailedDeletions)
	})
	c.WaitUntilNotified()

	startFlag.Store(true)
	start := time.Now()
	timer := time.AfterFunc(duration, stop.Cancel)
	c.Join()
	timer.Stop()
	elapsed := time.Since(start)

	return ThroughputResult{
		Insertions:      numInsertions.Load(),
		Deletions:       numDeletions.Load(),
		FailedDeletions: numFailedDeletions.Load(),
		Elapsed:         elapsed,
	}
}

func runThroughputWorker(
	ctx coord.Context,
	queue pq.PriorityQueue,
	settings Settings,
	startFlag *atomic.Bool,
	stop *cancel.AtomicCanceler,
	numInsertions, numDeletions, numFailedDeletions *atomic.Uint64,
) {
	handle := queue.NewHandle(ctx.ID())
	inserter := strategy.New(ctx.ID(), settings.Insert, settings.Seed)
	sleepRNG := rand.New(rand.NewPCG(settings.Seed, uint64(ctx.ID())+1))

	if ctx.IsMain() {
		prefill(queue, settings)
	}
	ctx.Synchronize(0, func() { ctx.NotifyCoordinator() })
	for !startFlag.Load() {
		runtime.Gosched()
	}

	var localInsertions, localDeletions, localFailed uint64
	for !stop.Done() {
		if inserter.Insert() {
			key := inserter.Key()
			handle.Push(pq.Key(key), pq.Value(key))
			localInsertions++
		} else {
			_, _, ok := handle.TryPop()
			if !ok {
				localFailed++
			}
			localDeletions++
		}
		sleepBetweenOps(settings.SleepBetweenOp, sleepRNG)
	}
	ctx.Synchronize(1, nil)

	numInsertions.Add(localInsertions)
	numDeletions.Add(localDeletions)
	numFailedDeletions.Add(localFailed)
}

// QualityResult is the outcome of a quality-mode run: the aggregate
// counts plus the full drained event trace.
type QualityResult struct {
	NumThreads int
	Records    []eventlog.Record
}

// RunQuality prefills queue, then runs numThreads workers until at least
// minDeletions successful pops have completed across all threads or stop
// is cancelled, recording a timestamped trace of every operation. If
// stop is nil, RunQuality creates its own (so the run can only end via
// minDeletions).
func RunQuality(settings Settings, minDeletions uint64, queue pq.PriorityQueue, stop *cancel.AtomicCanceler) (QualityResult, error) {
	if stop == nil {
		stop = cancel.NewAtomic()
	}
	log, err := eventlog.New(settings.NumThreads)
	if err != nil {
		return QualityResult{}, err
	}
	log.Start()

	var startFlag atomic.Bool
	var numDeleteOps atomic.Uint64

	c := coord.New(settings.NumThreads, settings.PinCPUs)
	c.Run(func(ctx coord.Context) {
		runQualityWorker(ctx, queue, settings, log, &startFlag, stop, &numDeleteOps, minDeletions)
	})
	c.WaitUntilNotified()
	startFlag.Store(true)
	c.Join()
	log.Stop()

	return QualityResult{NumThreads: settings.NumThreads, Records: log.Records()}, nil
}

func runQualityWorker(
	ctx coord.Context,
	queue pq.PriorityQueue,
	settings Settings,
	log *eventlog.Log,
	startFlag *atomic.Bool,
	stop *cancel.AtomicCanceler,
	numDeleteOps *atomic.Uint64,
	minDeletions uint64,
) {
	handle := queue.NewHandle(ctx.ID())
	inserter := strategy.New(ctx.ID(), settings.Insert, settings.Seed)
	sleepRNG := rand.New(rand.NewPCG(settings.Seed, uint64(ctx.ID())+1))

	var localElemID uint64
	if ctx.IsMain() {
		localElemID = prefillQuality(queue, settings, ctx.ID(), log, localElemID)
	}
	ctx.Synchronize(0, func() { ctx.NotifyCoordinator() })
	for !startFlag.Load() {
		runtime.Gosched()
	}

	for numDeleteOps.Load() < minDeletions && !stop.Done() {
		if inserter.Insert() {
			key := inserter.Key()
			value := ToValue(ctx.ID(), localElemID)
			localElemID++
			handle.Push(pq.Key(key), pq.Value(value))
			ts := uint64(tick.FencedRealtimeNanos())
			log.Write(ctx.ID(), eventlog.Record{Tick: ts, Kind: eventlog.KindInsertion, Key: key})
		} else {
			k, v, ok := handle.TryPop()
			ts := uint64(tick.FencedRealtimeNanos())
			if ok {
				log.Write(ctx.ID(), eventlog.Record{Tick: ts, Kind: eventlog.KindDeletion, Key: uint64(k), Value: uint64(v)})
				numDeleteOps.Add(1)
			} else {
				log.Write(ctx.ID(), eventlog.Record{Tick: ts, Kind: eventlog.KindFailedDeletion})
			}
		}
		sleepBetweenOps(settings.SleepBetweenOp, sleepRNG)
	}
	ctx.Synchronize(1, nil)
}

func prefill(queue pq.PriorityQueue, settings Settings) {
	if settings.PrefillSize == 0 {
		return
	}
	handle := queue.NewHandle(0)
	inserter := strategy.New(0, settings.Insert, settings.Seed)
	for i := uint64(0); i < settings.PrefillSize; i++ {
		key := inserter.Key()
		handle.Push(pq.Key(key), pq.Value(key))
	}
}

func prefillQuality(queue pq.PriorityQueue, settings Settings, threadID int, log *eventlog.Log, startElemID uint64) uint64 {
	if settings.PrefillSize == 0 {
		return startElemID
	}
	handle := queue.NewHandle(threadID)
	inserter := strategy.New(threadID, settings.Insert, settings.Seed)
	elemID := startElemID
	for i := uint64(0); i < settings.PrefillSize; i++ {
		key := inserter.Key()
		value := ToValue(threadID, elemID)
		elemID++
		handle.Push(pq.Key(key), pq.Value(value))
		log.Write(threadID, eventlog.Record{Tick: 0, Kind: eventlog.KindInsertion, Key: key})
	}
	return elemID
}

func sleepBetweenOps(max time.Duration, rng *rand.Rand) {
	if max <= 0 {
		return
	}
	time.Sleep(time.Duration(rng.Int64N(int64(max) + 1)))
}
