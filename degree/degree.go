// Package degree implements the two degree-table construction strategies:
// a dense in-RAM accumulator updated while shards are encoded, and a
// memory-bounded replay strategy that re-reads the just-written adjacency
// streams. Both strategies produce the dense or sparse on-disk degree
// table described in spec §3/§6.
package degree

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Accumulator holds the in-RAM degree arrays, padded to length =
// maxVertexId + P as required so that a final-layout translated id never
// falls outside the allocation (see spec §9's open question).
type Accumulator struct {
	in  []int32
	out []int32
}

// NewAccumulator allocates two zeroed int32 arrays of the given length.
func NewAccumulator(length int) *Accumulator {
	return &Accumulator{
		in:  make([]int32, length),
		out: make([]int32, length),
	}
}

// Add records one edge (newSrc, newDst) in final-layout id space: the
// shard encoder calls this once per sorted edge as it writes the adjacency
// stream.
func (a *Accumulator) Add(newSrc, newDst uint32) {
	a.out[newSrc]++
	a.in[newDst]++
}

// AddOut increments only the out-degree counter; used when the caller
// shards outDegrees by source ownership to avoid cross-shard races under
// parallel encoding (spec §5/§9).
func (a *Accumulator) AddOut(newSrc uint32) {
	a.out[newSrc]++
}

// AddIn increments only the in-degree counter; always race-free across
// shards since shard k owns exactly the destinations in its interval.
func (a *Accumulator) AddIn(newDst uint32) {
	a.in[newDst]++
}

// Len returns the padded array length.
func (a *Accumulator) Len() int { return len(a.in) }

// WriteDense writes the dense degree table: for every vertex id in
// [0, Len()), two little-endian int32 fields (in-degree, out-degree).
func (a *Accumulator) WriteDense(w io.Writer) error {
	return writeDense(w, a.in, a.out)
}

// WriteSparse writes the sparse degree table: one (id, in, out) little-endian
// int32 triple per non-isolated vertex, ascending by id.
func (a *Accumulator) WriteSparse(w io.Writer) error {
	return writeSparse(w, a.in, a.out)
}

func writeDense(w io.Writer, in, out []int32) error {
	bw := bufio.NewWriter(w)
	var rec [8]byte
	for v := range in {
		binary.LittleEndian.PutUint32(rec[0:4], uint32(in[v]))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(out[v]))
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("degree: write dense record for vertex %d: %w", v, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("degree: flush dense degree file: %w", err)
	}
	return nil
}

func writeSparse(w io.Writer, in, out []int32) error {
	bw := bufio.NewWriter(w)
	var rec [12]byte
	for v := range in {
		if in[v] == 0 && out[v] == 0 {
			continue
		}
		binary.LittleEndian.PutUint32(rec[0:4], uint32(v))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(in[v]))
		binary.LittleEndian.PutUint32(rec[8:12], uint32(out[v]))
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("degree: write sparse record for vertex %d: %w", v, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("degree: flush sparse degree file: %w", err)
	}
	return nil
}

// ShouldUseSparseOutput decides dense vs sparse output format: dense iff
// maxVertexId <= numEdges, unless forced sparse by the operator flag.
func ShouldUseSparseOutput(maxVertexID uint32, numEdges int64, forceSparse bool) bool {
	if forceSparse {
		return true
	}
	return int64(maxVertexID) > numEdges
}

// ReadDense reads a dense degree file back, for tests and --verify.
func ReadDense(path string) (in, out []int32, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("degree: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.Size()%8 != 0 {
		return nil, nil, fmt.Errorf("degree: %s size %d is not a multiple of 8", path, info.Size())
	}
	n := int(info.Size() / 8)
	in = make([]int32, n)
	out = make([]int32, n)

	r := bufio.NewReader(f)
	var rec [8]byte
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, nil, fmt.Errorf("degree: read record %d: %w", i, err)
		}
		in[i] = int32(binary.LittleEndian.Uint32(rec[0:4]))
		out[i] = int32(binary.LittleEndian.Uint32(rec[4:8]))
	}
	return in, out, nil
}

// SparseRecord is one (id, in, out) entry of a sparse degree file.
type SparseRecord struct {
	ID  uint32
	In  int32
	Out int32
}

// ReadSparse reads a sparse degree file back, for tests and --verify.
func ReadSparse(path string) ([]SparseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("degree: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size()%12 != 0 {
		return nil, fmt.Errorf("degree: %s size %d is not a multiple of 12", path, info.Size())
	}
	n := int(info.Size() / 12)
	records := make([]SparseRecord, n)

	r := bufio.NewReader(f)
	var rec [12]byte
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, fmt.Errorf("degree: read record %d: %w", i, err)
		}
		records[i] = SparseRecord{
			ID:  binary.LittleEndian.Uint32(rec[0:4]),
			In:  int32(binary.LittleEndian.Uint32(rec[4:8])),
			Out: int32(binary.LittleEndian.Uint32(rec[8:12])),
		}
	}
	return records, nil
}
