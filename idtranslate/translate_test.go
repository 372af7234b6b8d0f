package idtranslate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBijectionExhaustive(t *testing.T) {
	tr, err := New(17, 5)
	require.NoError(t, err)

	for v := uint32(0); v < 17*5; v++ {
		w := tr.Forward(v)
		require.Equal(t, v, tr.Backward(w), "backward(forward(%d)) mismatch", v)
	}
}

func TestBijectionRandomSample(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tr, err := New(1<<20, 8)
	require.NoError(t, err)

	for i := 0; i < 10_000; i++ {
		v := uint32(rng.Int63n(int64(tr.IntervalLength()) * tr.NumShards()))
		require.Equal(t, v, tr.Backward(tr.Forward(v)))
		require.Equal(t, v, tr.Forward(tr.Backward(v)))
	}
}

func TestPreLayout(t *testing.T) {
	tr, err := PreLayout(4)
	require.NoError(t, err)
	require.Equal(t, int64(2147483647/4), tr.IntervalLength())
}

func TestFinalLayout(t *testing.T) {
	tr, err := FinalLayout(3, 2)
	require.NoError(t, err)
	// (1+3)/2 + 1 = 3
	require.Equal(t, int64(3), tr.IntervalLength())
}

func TestStringRoundTrip(t *testing.T) {
	tr, err := New(123, 9)
	require.NoError(t, err)

	parsed, err := Parse(tr.StringRepresentation())
	require.NoError(t, err)
	require.Equal(t, tr.IntervalLength(), parsed.IntervalLength())
	require.Equal(t, tr.NumShards(), parsed.NumShards())
}

func TestNewRejectsNonPositive(t *testing.T) {
	_, err := New(0, 4)
	require.Error(t, err)
	_, err = New(4, 0)
	require.Error(t, err)
}
