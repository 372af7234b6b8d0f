package edgevalue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyProcessor(t *testing.T) {
	var p Empty
	require.Equal(t, 0, p.SizeOf())

	v, err := p.ParseToken([]byte("ignored"), true, 1, 2)
	require.NoError(t, err)

	buf := make([]byte, 0)
	p.WriteTo(buf, v)
	require.Len(t, buf, 0)

	require.NoError(t, p.OnSelfLoop(5, nil, false))
}

func TestFixedBytesWriteTo(t *testing.T) {
	f := FixedBytes{Size: 4}
	buf := make([]byte, 4)
	f.WriteTo(buf, []byte{1, 2, 3, 4})
	require.Equal(t, []byte{1, 2, 3, 4}, buf)
}

func TestFixedBytesWriteToPanicsOnWrongSize(t *testing.T) {
	f := FixedBytes{Size: 4}
	buf := make([]byte, 4)
	require.Panics(t, func() {
		f.WriteTo(buf, []byte{1, 2, 3})
	})
}
