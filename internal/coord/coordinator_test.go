package coord_test

import (
	"sync/atomic"
	"testing"

	"github.com/mwilliams-bench/relaxq/internal/coord"
	"github.com/stretchr/testify/require"
)

func TestSynchronizeRunsLeaderOnceAndReleasesAll(t *testing.T) {
	const n = 8
	c := coord.New(n, false)

	var leaderCalls atomic.Int32
	var afterBarrier atomic.Int32

	c.Run(func(ctx coord.Context) {
		ctx.Synchronize(0, func() { leaderCalls.Add(1) })
		afterBarrier.Add(1)
		ctx.Synchronize(1, nil)
	})
	require.NoError(t, c.Join())

	require.Equal(t, int32(1), leaderCalls.Load())
	require.Equal(t, int32(n), afterBarrier.Load())
}

func TestNotifyCoordinatorUnblocksWaitUntilNotified(t *testing.T) {
	c := coord.New(3, false)
	c.Run(func(ctx coord.Context) {
		ctx.Synchronize(0, func() { ctx.NotifyCoordinator() })
	})
	c.WaitUntilNotified()
	require.NoError(t, c.Join())
}

func TestBlockSchedulerCoversEveryIndexExactlyOnce(t *testing.T) {
	const n = 10_037
	sched := coord.NewBlockScheduler(n, 17)

	seen := make([]bool, n)
	for {
		begin, count, ok := sched.Next()
		if !ok {
			break
		}
		for i := begin; i < begin+count; i++ {
			require.False(t, seen[i], "index %d claimed twice", i)
			seen[i] = true
		}
	}
	for i, s := range seen {
		require.True(t, s, "index %d never claimed", i)
	}
}

func TestExecuteSynchronizedBlockwiseProcessesAllIndices(t *testing.T) {
	const n = 5000
	const numThreads = 4
	c := coord.New(numThreads, false)

	sched := coord.NewBlockScheduler(n, 128)
	var processed atomic.Int64
	c.Run(func(ctx coord.Context) {
		c.ExecuteSynchronizedBlockwise(ctx, 0, sched, func(begin, count uint64) {
			processed.Add(int64(count))
		})
	})
	require.NoError(t, c.Join())
	require.Equal(t, int64(n), processed.Load())
}

func TestReportErrorSurfacesFirstErrorOnly(t *testing.T) {
	c := coord.New(2, false)
	c.Run(func(ctx coord.Context) {
		c.ReportError(assertErr(ctx.ID()))
	})
	err := c.Join()
	require.Error(t, err)
}

type idErr int

func (e idErr) Error() string { return "worker error" }

func assertErr(id int) error { return idErr(id) }
