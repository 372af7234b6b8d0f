// Package shardenc implements the shard encoder: it turns sorted edge
// arrays into the run-length adjacency byte stream and the
// block-compressed edge-data directory the engine reads.
package shardenc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rpcpool/graphsharder/shovel"
)

// Edge is a decoded (src, dst) pair, used by tests and by the --verify /
// replay-degree paths to read an adjacency stream back.
type Edge struct {
	Src, Dst uint32
}

// EncodeAdjacency writes the run-length adjacency stream for one shard.
// keys must already be sorted ascending (the co-sorter's output); each key
// packs (src<<32)|dst as produced by shovel.PackKey.
func EncodeAdjacency(w io.Writer, keys []uint64) error {
	bw := bufio.NewWriter(w)
	n := len(keys)

	var havePrev bool
	var prevSource uint32

	i := 0
	for i < n {
		src, _ := shovel.UnpackKey(keys[i])

		var gap int64
		if !havePrev {
			gap = int64(src)
		} else {
			gap = int64(src) - int64(prevSource) - 1
		}
		if err := writeGap(bw, gap); err != nil {
			return err
		}

		j := i
		for j < n {
			s2, _ := shovel.UnpackKey(keys[j])
			if s2 != src {
				break
			}
			j++
		}
		count := j - i
		if err := writeCountPrefix(bw, count); err != nil {
			return err
		}
		var dstBuf [4]byte
		for k := i; k < j; k++ {
			_, dst := shovel.UnpackKey(keys[k])
			binary.LittleEndian.PutUint32(dstBuf[:], dst)
			if _, err := bw.Write(dstBuf[:]); err != nil {
				return fmt.Errorf("shardenc: write destination: %w", err)
			}
		}

		prevSource = src
		havePrev = true
		i = j
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("shardenc: flush adjacency stream: %w", err)
	}
	return nil
}

// writeGap emits the zero-gap token sequence for a run of g zero-out-degree
// vertices, per the §4.5 encoding:
//
//	while g > 0:
//	    emit 0
//	    g := g - 1
//	    t := min(254, g)
//	    emit t
//	    g := g - t
func writeGap(w io.ByteWriter, g int64) error {
	for g > 0 {
		if err := w.WriteByte(0); err != nil {
			return fmt.Errorf("shardenc: write gap token: %w", err)
		}
		g--
		t := g
		if t > 254 {
			t = 254
		}
		if err := w.WriteByte(byte(t)); err != nil {
			return fmt.Errorf("shardenc: write gap token: %w", err)
		}
		g -= t
	}
	return nil
}

func writeCountPrefix(w *bufio.Writer, c int) error {
	if c < 255 {
		return w.WriteByte(byte(c))
	}
	if err := w.WriteByte(0xFF); err != nil {
		return err
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(c))
	_, err := w.Write(b[:])
	return err
}

// DecodeAdjacency reads an adjacency stream back into its (src, dst) pairs.
// It is used by the replay degree strategy and by --verify, not by the
// encode path.
func DecodeAdjacency(r io.Reader) ([]Edge, error) {
	br := bufio.NewReader(r)
	var edges []Edge
	var cursor uint32

	for {
		b0, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("shardenc: read token: %w", err)
		}

		if b0 == 0 {
			t, err := br.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("shardenc: read gap continuation: %w", err)
			}
			cursor += 1 + uint32(t)
			continue
		}

		var count int
		if b0 == 0xFF {
			var b [4]byte
			if _, err := io.ReadFull(br, b[:]); err != nil {
				return nil, fmt.Errorf("shardenc: read extended count: %w", err)
			}
			count = int(binary.LittleEndian.Uint32(b[:]))
		} else {
			count = int(b0)
		}

		for k := 0; k < count; k++ {
			var b [4]byte
			if _, err := io.ReadFull(br, b[:]); err != nil {
				return nil, fmt.Errorf("shardenc: read destination: %w", err)
			}
			edges = append(edges, Edge{Src: cursor, Dst: binary.LittleEndian.Uint32(b[:])})
		}
		cursor++
	}
	return edges, nil
}
