package eventlog_test

import (
	"sync"
	"testing"

	"github.com/mwilliams-bench/relaxq/internal/eventlog"
	"github.com/stretchr/testify/require"
)

func TestLogCapturesWritesFromEveryThread(t *testing.T) {
	const numThreads = 4
	const perThread = 200

	l, err := eventlog.New(numThreads)
	require.NoError(t, err)
	l.Start()

	var wg sync.WaitGroup
	for tid := 0; tid < numThreads; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			for i := 0; i < perThread; i++ {
				l.Write(tid, eventlog.Record{Kind: eventlog.KindInsertion, Key: uint64(i)})
			}
		}(tid)
	}
	wg.Wait()
	l.Stop()

	records := l.Records()
	require.Len(t, records, numThreads*perThread)

	insertions, deletions, failed := eventlog.ByThread(records, numThreads)
	for tid := 0; tid < numThreads; tid++ {
		require.Len(t, insertions[tid], perThread)
		require.Empty(t, deletions[tid])
		require.Empty(t, failed[tid])
	}
}

func TestByThreadIgnoresOutOfRangeThreadID(t *testing.T) {
	records := []eventlog.Record{{ThreadID: 5, Kind: eventlog.KindInsertion}}
	insertions, _, _ := eventlog.ByThread(records, 2)
	for _, per := range insertions {
		require.Empty(t, per)
	}
}
