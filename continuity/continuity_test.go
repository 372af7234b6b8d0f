package continuity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChainAllStepsSucceed(t *testing.T) {
	var ran []string
	err := New().
		Step("one", func() error { ran = append(ran, "one"); return nil }).
		Step("two", func() error { ran = append(ran, "two"); return nil }).
		Err()
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, ran)
}

func TestChainStopsAtFirstFailure(t *testing.T) {
	var ran []string
	err := New().
		Step("one", func() error { ran = append(ran, "one"); return nil }).
		Step("two", func() error { ran = append(ran, "two"); return errors.New("boom") }).
		Step("three", func() error { ran = append(ran, "three"); return nil }).
		Err()

	require.Error(t, err)
	require.Contains(t, err.Error(), "two")
	require.Contains(t, err.Error(), "boom")
	require.Equal(t, []string{"one", "two"}, ran)
}

func TestChainFailedStep(t *testing.T) {
	c := New().Step("ingest", func() error { return errors.New("bad line") })
	require.Equal(t, "ingest", c.FailedStep())
}
