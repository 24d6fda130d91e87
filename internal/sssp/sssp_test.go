package sssp_test

import (
	"strings"
	"testing"

	"github.com/mwilliams-bench/relaxq/internal/graph"
	"github.com/mwilliams-bench/relaxq/internal/pq"
	"github.com/mwilliams-bench/relaxq/internal/sssp"
	"github.com/stretchr/testify/require"
)

const fiveNodeGraph = `c a five-node test graph
p sp 5 6
a 1 2 10
a 1 3 3
a 3 2 1
a 2 4 2
a 3 4 8
a 4 5 1
`

func TestRunSingleThreadMatchesSolution(t *testing.T) {
	g, err := graph.ReadDIMACS(strings.NewReader(fiveNodeGraph))
	require.NoError(t, err)

	q := pq.New(1, 1, pq.DefaultConfig())
	res := sssp.Run(g, 1, false, q)

	want := []uint32{0, 4, 3, 6, 7}
	require.Equal(t, want, res.Distances)
	require.NoError(t, sssp.Verify(res, want))
}

func TestRunMultiThreadMatchesSolution(t *testing.T) {
	g, err := graph.ReadDIMACS(strings.NewReader(fiveNodeGraph))
	require.NoError(t, err)

	q := pq.New(4, 1, pq.DefaultConfig())
	res := sssp.Run(g, 4, false, q)

	require.NoError(t, sssp.Verify(res, []uint32{0, 4, 3, 6, 7}))
	require.Greater(t, res.NodesProcessed, uint64(0))
}

func TestRunLeavesUnreachableNodesAtSentinel(t *testing.T) {
	g, err := graph.ReadDIMACS(strings.NewReader("p sp 3 1\na 1 2 5\n"))
	require.NoError(t, err)

	q := pq.New(2, 1, pq.DefaultConfig())
	res := sssp.Run(g, 2, false, q)

	require.Equal(t, uint32(0), res.Distances[0])
	require.Equal(t, uint32(5), res.Distances[1])
	require.Equal(t, graph.UnreachableDistance, res.Distances[2])
}

func TestVerifyDetectsSizeMismatch(t *testing.T) {
	res := &sssp.Result{Distances: []uint32{0, 1}}
	require.ErrorIs(t, sssp.Verify(res, []uint32{0}), sssp.ErrSizeMismatch)
}

func TestVerifyDetectsValueMismatch(t *testing.T) {
	res := &sssp.Result{Distances: []uint32{0, 2}}
	require.ErrorIs(t, sssp.Verify(res, []uint32{0, 1}), sssp.ErrSolutionMismatch)
}
