package sharder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpcpool/graphsharder/degree"
	"github.com/rpcpool/graphsharder/edgevalue"
	"github.com/rpcpool/graphsharder/idtranslate"
	"github.com/rpcpool/graphsharder/shardenc"
	"github.com/stretchr/testify/require"
)

func newValueProcessor() edgevalue.Empty {
	return edgevalue.Empty{}
}

// decodeAllShards reassembles (src, dst) pairs across every shard's
// adjacency stream, translating ids back to their original input space via
// the run's own translate file.
func decodeAllShards(t *testing.T, base string, numShards int) map[[2]uint32]bool {
	t.Helper()

	translateBytes, err := os.ReadFile(translatePath(base, numShards))
	require.NoError(t, err)
	tr, err := idtranslate.Parse(string(translateBytes))
	require.NoError(t, err)

	got := map[[2]uint32]bool{}
	for k := 0; k < numShards; k++ {
		f, err := os.Open(adjacencyPath(base, k, numShards))
		require.NoError(t, err)
		edges, err := shardenc.DecodeAdjacency(f)
		require.NoError(t, err)
		require.NoError(t, f.Close())

		for _, e := range edges {
			origSrc := tr.Backward(e.Src)
			origDst := tr.Backward(e.Dst)
			got[[2]uint32{origSrc, origDst}] = true
		}
	}
	return got
}

func TestDriverEndToEndSmallGraph(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "run")

	d, err := New[struct{}](base, 4, newValueProcessor())
	require.NoError(t, err)

	edges := [][2]uint32{
		{0, 1}, {0, 2}, {1, 2}, {2, 3}, {3, 0}, {5, 1}, {7, 7},
	}
	for _, e := range edges {
		require.NoError(t, d.AddEdge(e[0], e[1], nil, false))
	}
	require.EqualValues(t, 1, d.NumSelfLoops())
	require.EqualValues(t, len(edges)-1, d.NumEdges())
	require.EqualValues(t, 7, d.MaxVertexID())

	require.NoError(t, d.Process())

	got := decodeAllShards(t, base, 4)
	for _, e := range edges {
		if e[0] == e[1] {
			continue
		}
		require.True(t, got[e], "missing edge (%d,%d)", e[0], e[1])
	}
	require.Len(t, got, len(edges)-1)

	_, statErr := os.Stat(denseDegreesPath(base))
	_, statErrSparse := os.Stat(sparseDegreesPath(base))
	require.True(t, statErr == nil || statErrSparse == nil, "expected a degree file to exist")

	_, err = os.Stat(runSummaryPath(base, 4))
	require.NoError(t, err)

	for k := 0; k < 4; k++ {
		_, err := os.Stat(d.shovels.Path(k))
		require.True(t, os.IsNotExist(err), "shovel for shard %d should have been deleted", k)
	}
}

func TestDriverProcessTwiceFails(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "run")

	d, err := New[struct{}](base, 2, newValueProcessor())
	require.NoError(t, err)
	require.NoError(t, d.AddEdge(0, 1, nil, false))
	require.NoError(t, d.Process())
	require.Error(t, d.Process())
}

func TestDriverForcedSparseDegrees(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "run")

	d, err := New[struct{}](base, 2, newValueProcessor(), WithSparseForced[struct{}](true))
	require.NoError(t, err)
	require.NoError(t, d.AddEdge(0, 1, nil, false))
	require.NoError(t, d.AddEdge(1, 2, nil, false))
	require.NoError(t, d.Process())

	_, err = os.Stat(sparseDegreesPath(base))
	require.NoError(t, err)
	_, err = os.Stat(denseDegreesPath(base))
	require.True(t, os.IsNotExist(err))
}

func TestDriverReplayStrategyMatchesInRAM(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "run")

	d, err := New[struct{}](base, 3, newValueProcessor(), WithMemoryBudgetBytes[struct{}](1))
	require.NoError(t, err)
	edges := [][2]uint32{{0, 1}, {1, 2}, {2, 0}, {3, 1}, {4, 4}}
	for _, e := range edges {
		require.NoError(t, d.AddEdge(e[0], e[1], nil, false))
	}
	require.NoError(t, d.Process())

	_, err = os.Stat(denseDegreesPath(base))
	require.NoError(t, err)

	in, out, err := degree.ReadDense(denseDegreesPath(base))
	require.NoError(t, err)
	require.NotEmpty(t, in)
	require.Equal(t, len(in), len(out))

	// Same input with a budget large enough for the in-RAM strategy.
	inRAMBase := filepath.Join(dir, "inram")
	dRAM, err := New[struct{}](inRAMBase, 3, newValueProcessor(), WithMemoryBudgetBytes[struct{}](1<<40))
	require.NoError(t, err)
	for _, e := range edges {
		require.NoError(t, dRAM.AddEdge(e[0], e[1], nil, false))
	}
	require.NoError(t, dRAM.Process())

	wantIn, wantOut, err := degree.ReadDense(denseDegreesPath(inRAMBase))
	require.NoError(t, err)
	require.Equal(t, wantIn, in)
	require.Equal(t, wantOut, out)
}
