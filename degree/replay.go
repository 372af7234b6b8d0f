package degree

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/rpcpool/graphsharder/shardenc"
)

// DefaultSubIntervalSize is the tunable sub-interval width the replay
// strategy uses to bound the memory of any single pass; its only
// requirement is that two int32 slices of this length fit comfortably in
// RAM. The full sliding-shard engine read path this strategy stands in for
// is out of scope for the sharder (spec §1, §4.6); this is a self-contained
// re-scan of the sharder's own adjacency streams that produces the same
// degree table.
const DefaultSubIntervalSize = 2_000_000

// Replay computes the degree table by repeatedly re-reading every shard's
// adjacency stream, one vertex-id sub-interval at a time, and writes the
// dense or sparse degree file directly to outPath. length is the padded
// degree-array length (maxVertexId + numShards).
func Replay(shardAdjPaths []string, length int, subIntervalSize int, sparse bool, outPath string) error {
	if subIntervalSize <= 0 {
		subIntervalSize = DefaultSubIntervalSize
	}

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("degree: create degree file %s: %w", outPath, err)
	}
	defer out.Close()

	bw := bufio.NewWriter(out)

	for start := 0; start < length; start += subIntervalSize {
		end := start + subIntervalSize
		if end > length {
			end = length
		}
		width := end - start

		inBuf := make([]int32, width)
		outBuf := make([]int32, width)

		for _, path := range shardAdjPaths {
			if err := tallyShard(path, start, end, inBuf, outBuf); err != nil {
				return fmt.Errorf("degree: replay scanning %s: %w", path, err)
			}
		}

		if sparse {
			if err := writeSparseSubInterval(bw, start, inBuf, outBuf); err != nil {
				return err
			}
		} else {
			if err := writeDenseSubInterval(bw, inBuf, outBuf); err != nil {
				return err
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("degree: flush degree file %s: %w", outPath, err)
	}
	return nil
}

// tallyShard decodes one shard's adjacency stream and increments inBuf/outBuf
// for every (src, dst) whose id falls within [start, end).
func tallyShard(path string, start, end int, inBuf, outBuf []int32) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	edges, err := shardenc.DecodeAdjacency(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	for _, e := range edges {
		if int(e.Src) >= start && int(e.Src) < end {
			outBuf[int(e.Src)-start]++
		}
		if int(e.Dst) >= start && int(e.Dst) < end {
			inBuf[int(e.Dst)-start]++
		}
	}
	return nil
}

func writeDenseSubInterval(w *bufio.Writer, in, out []int32) error {
	var rec [8]byte
	for i := range in {
		binary.LittleEndian.PutUint32(rec[0:4], uint32(in[i]))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(out[i]))
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("degree: write dense sub-interval record: %w", err)
		}
	}
	return nil
}

func writeSparseSubInterval(w *bufio.Writer, base int, in, out []int32) error {
	var rec [12]byte
	for i := range in {
		if in[i] == 0 && out[i] == 0 {
			continue
		}
		binary.LittleEndian.PutUint32(rec[0:4], uint32(base+i))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(in[i]))
		binary.LittleEndian.PutUint32(rec[8:12], uint32(out[i]))
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("degree: write sparse sub-interval record: %w", err)
		}
	}
	return nil
}
