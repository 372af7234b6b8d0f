package shardenc

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockDirRoundTrip(t *testing.T) {
	dir := t.TempDir()
	blockDir := filepath.Join(dir, "graph.edata_java.4B.0.1_blockdir_16")

	rng := rand.New(rand.NewSource(5))
	values := make([]byte, 1000)
	rng.Read(values)

	require.NoError(t, WriteBlockDir(blockDir, values, 16))

	got, err := ReadBlockDir(blockDir)
	require.NoError(t, err)
	require.Equal(t, values, got)

	require.FileExists(t, blockDir+".size")
}

func TestBlockDirEmptyValues(t *testing.T) {
	dir := t.TempDir()
	blockDir := filepath.Join(dir, "graph.edata_java.0B.0.1_blockdir_16")

	require.NoError(t, WriteBlockDir(blockDir, nil, 16))

	got, err := ReadBlockDir(blockDir)
	require.NoError(t, err)
	require.Len(t, got, 0)
}

func TestBlockDirDefaultBlockSize(t *testing.T) {
	dir := t.TempDir()
	blockDir := filepath.Join(dir, "graph.edata_java.4B.0.1_blockdir_default")
	values := []byte("small payload")

	require.NoError(t, WriteBlockDir(blockDir, values, 0))

	got, err := ReadBlockDir(blockDir)
	require.NoError(t, err)
	require.Equal(t, values, got)
}
