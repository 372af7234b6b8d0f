package sharder

import (
	"fmt"
	"os"

	"github.com/rpcpool/graphsharder/idtranslate"
	"github.com/rpcpool/graphsharder/shardenc"
)

// Verify re-reads a completed run's output and checks the testable
// properties a correct shard set must hold: the translate file round-trips
// for the first 1000 vertex ids, every shard's adjacency stream is sorted
// ascending by (src, dst), and, when valueSize > 0, every edge-data block
// directory decompresses to exactly (edges in the shard) * valueSize bytes.
// It does not recompute degrees; that would duplicate the whole replay
// strategy for a check that is meant to be cheap.
func Verify(base string, numShards, valueSize int) error {
	translateBytes, err := os.ReadFile(translatePath(base, numShards))
	if err != nil {
		return fmt.Errorf("sharder: verify: read translate file: %w", err)
	}
	tr, err := idtranslate.Parse(string(translateBytes))
	if err != nil {
		return fmt.Errorf("sharder: verify: parse translate file: %w", err)
	}
	for v := uint32(0); v < 1000 && v < uint32(tr.IntervalLength()*tr.NumShards()); v++ {
		if tr.Backward(tr.Forward(v)) != v {
			return fmt.Errorf("sharder: verify: translate bijection failed at vertex %d", v)
		}
	}

	for k := 0; k < numShards; k++ {
		f, err := os.Open(adjacencyPath(base, k, numShards))
		if err != nil {
			return fmt.Errorf("sharder: verify shard %d: open adjacency stream: %w", k, err)
		}
		edges, err := shardenc.DecodeAdjacency(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("sharder: verify shard %d: decode adjacency stream: %w", k, err)
		}

		var havePrev bool
		var prevSrc, prevDst uint32
		for _, e := range edges {
			if havePrev {
				if e.Src < prevSrc || (e.Src == prevSrc && e.Dst < prevDst) {
					return fmt.Errorf("sharder: verify shard %d: adjacency stream out of order at (%d,%d) after (%d,%d)", k, e.Src, e.Dst, prevSrc, prevDst)
				}
			}
			prevSrc, prevDst = e.Src, e.Dst
			havePrev = true
		}

		dirPath := blockDirPath(base, valueSize, k, numShards, shardenc.DefaultBlockSize)
		if valueSize > 0 {
			values, err := shardenc.ReadBlockDir(dirPath)
			if err != nil {
				return fmt.Errorf("sharder: verify shard %d: read block directory: %w", k, err)
			}
			if want := len(edges) * valueSize; len(values) != want {
				return fmt.Errorf("sharder: verify shard %d: block directory has %d bytes, want %d", k, len(values), want)
			}
		}
	}
	return nil
}
