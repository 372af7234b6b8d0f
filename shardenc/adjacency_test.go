package shardenc

import (
	"bytes"
	"testing"

	"github.com/rpcpool/graphsharder/shovel"
	"github.com/stretchr/testify/require"
)

func TestAdjacencyRoundTrip(t *testing.T) {
	keys := []uint64{
		shovel.PackKey(0, 5),
		shovel.PackKey(0, 2),
		shovel.PackKey(5, 2),
	}
	// emulate a co-sort: ascending by the packed key.
	sortKeys(keys)

	var buf bytes.Buffer
	require.NoError(t, EncodeAdjacency(&buf, keys))

	edges, err := DecodeAdjacency(&buf)
	require.NoError(t, err)

	want := map[Edge]int{}
	for _, k := range keys {
		src, dst := shovel.UnpackKey(k)
		want[Edge{Src: src, Dst: dst}]++
	}
	got := map[Edge]int{}
	for _, e := range edges {
		got[e]++
	}
	require.Equal(t, want, got)
}

func TestAdjacencyGapEncoding_S4(t *testing.T) {
	// P=1, edges (0,1), (5,2): 4 zero-out-degree vertices (1,2,3,4) between
	// sources 0 and 5.
	keys := []uint64{
		shovel.PackKey(0, 1),
		shovel.PackKey(5, 2),
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeAdjacency(&buf, keys))

	b := buf.Bytes()
	// initial gap before source 0 is zero vertices -> no gap token.
	// layout: [count=1][dst=1 LE32][gap token 0,3][count=1][dst=2 LE32]
	require.Equal(t, byte(1), b[0])
	require.Equal(t, []byte{1, 0, 0, 0}, b[1:5])
	require.Equal(t, byte(0), b[5])
	require.Equal(t, byte(3), b[6]) // token (0,3): "zero, plus 3 more" covers all 4 gap vertices
	require.Equal(t, byte(1), b[7])
	require.Equal(t, []byte{2, 0, 0, 0}, b[8:12])

	edges, err := DecodeAdjacency(bytes.NewReader(b))
	require.NoError(t, err)
	require.Equal(t, []Edge{{Src: 0, Dst: 1}, {Src: 5, Dst: 2}}, edges)
}

func TestAdjacencyInitialGap(t *testing.T) {
	// first source is 3 with one edge: initial gap is 3 vertices (0,1,2).
	keys := []uint64{shovel.PackKey(3, 9)}
	var buf bytes.Buffer
	require.NoError(t, EncodeAdjacency(&buf, keys))

	b := buf.Bytes()
	require.Equal(t, byte(0), b[0])
	require.Equal(t, byte(2), b[1]) // token (0,2): "zero, plus 2 more" covers all 3 gap vertices
	require.Equal(t, byte(1), b[2])

	edges, err := DecodeAdjacency(bytes.NewReader(b))
	require.NoError(t, err)
	require.Equal(t, []Edge{{Src: 3, Dst: 9}}, edges)
}

func TestAdjacencyLargeCountPrefix_S5(t *testing.T) {
	// a source with exactly 300 out-edges.
	keys := make([]uint64, 300)
	for i := range keys {
		keys[i] = shovel.PackKey(0, uint32(i))
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeAdjacency(&buf, keys))

	b := buf.Bytes()
	require.Equal(t, byte(0xFF), b[0])
	require.Equal(t, []byte{44, 1, 0, 0}, b[1:5]) // 300 little-endian

	edges, err := DecodeAdjacency(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, edges, 300)
}

func TestAdjacencyGapLongerThan254(t *testing.T) {
	keys := []uint64{
		shovel.PackKey(0, 1),
		shovel.PackKey(300, 2),
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeAdjacency(&buf, keys))

	edges, err := DecodeAdjacency(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, []Edge{{Src: 0, Dst: 1}, {Src: 300, Dst: 2}}, edges)
}

func sortKeys(k []uint64) {
	for i := 1; i < len(k); i++ {
		for j := i; j > 0 && k[j-1] > k[j]; j-- {
			k[j-1], k[j] = k[j], k[j-1]
		}
	}
}
