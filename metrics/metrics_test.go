package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	s := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, s.Register(reg))

	s.EdgesIngested.Inc()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}
