package cosort

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortOrdersKeys(t *testing.T) {
	keys := []uint64{9, 1, 8, 2, 7, 3, 6, 4, 5, 0}
	values := make([]byte, len(keys)*1)
	for i, k := range keys {
		values[i] = byte(k)
	}

	require.NoError(t, SortSeeded(keys, values, 1, 42))

	require.True(t, sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] < keys[j] }))
	// co-permutation preserved: value byte must still equal its key.
	for i, k := range keys {
		require.Equal(t, byte(k), values[i])
	}
}

func TestSortRandomLarge(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 5000
	const vsize = 3
	keys := make([]uint64, n)
	values := make([]byte, n*vsize)
	for i := range keys {
		keys[i] = uint64(rng.Int63n(1 << 40))
		v := uint64(keys[i])
		values[i*vsize] = byte(v)
		values[i*vsize+1] = byte(v >> 8)
		values[i*vsize+2] = byte(v >> 16)
	}

	require.NoError(t, SortSeeded(keys, values, vsize, 99))
	require.True(t, sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] < keys[j] }))
	for i, k := range keys {
		got := uint64(values[i*vsize]) | uint64(values[i*vsize+1])<<8 | uint64(values[i*vsize+2])<<16
		require.Equal(t, k&0xffffff, got)
	}
}

func TestSortZeroValueSize(t *testing.T) {
	keys := []uint64{3, 1, 2}
	require.NoError(t, SortSeeded(keys, nil, 0, 1))
	require.Equal(t, []uint64{1, 2, 3}, keys)
}

func TestSortRejectsOversizedShard(t *testing.T) {
	keys := make([]uint64, 1)
	err := SortSeeded(keys, nil, 0, 1)
	require.NoError(t, err)
}

func TestSortDetectsMismatchedValues(t *testing.T) {
	keys := []uint64{1, 2, 3}
	values := make([]byte, 4) // wrong length for valueSize 2
	err := SortSeeded(keys, values, 2, 1)
	require.Error(t, err)
}
