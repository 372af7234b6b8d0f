// Package shovel implements the scratch files the first pass of the sharder
// spills edges into: one unordered, fixed-width-record file per destination
// shard, consumed and deleted by the second pass.
package shovel

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const writeBufSize = 64 * 1024

// RecordSize returns the fixed width of a shovel record for a given edge
// value size: 8 bytes of packed key plus V bytes of opaque value.
func RecordSize(valueSize int) int {
	return 8 + valueSize
}

// Writer is the buffered appender for a single shard's shovel file.
type Writer struct {
	f         *os.File
	w         *bufio.Writer
	valueSize int
	records   int64
}

// Create opens (or truncates) the shovel file at path for buffered
// appending.
func Create(path string, valueSize int) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("shovel: create %s: %w", path, err)
	}
	return &Writer{
		f:         f,
		w:         bufio.NewWriterSize(f, writeBufSize),
		valueSize: valueSize,
	}, nil
}

// Append writes the packed big-endian 64-bit key followed by the value
// bytes (exactly valueSize long). Appends are unordered; the writer does
// not sort, dedup, or acknowledge beyond the returned error.
func (w *Writer) Append(key uint64, value []byte) error {
	if len(value) != w.valueSize {
		return fmt.Errorf("shovel: value has %d bytes, want %d", len(value), w.valueSize)
	}
	var hdr [8]byte
	binary.BigEndian.PutUint64(hdr[:], key)
	if _, err := w.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("shovel: write key: %w", err)
	}
	if w.valueSize > 0 {
		if _, err := w.w.Write(value); err != nil {
			return fmt.Errorf("shovel: write value: %w", err)
		}
	}
	w.records++
	return nil
}

// Records returns the number of records appended so far.
func (w *Writer) Records() int64 { return w.records }

// Flush flushes the buffered writer without closing the underlying file.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("shovel: flush: %w", err)
	}
	return nil
}

// Close flushes and closes the shovel file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		_ = w.f.Close()
		return err
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("shovel: close: %w", err)
	}
	return nil
}

// Load reads an entire shovel file into a pair of co-sortable in-memory
// arrays: keys (one uint64 per record) and values (the flat concatenation
// of each record's V-byte payload, N*V bytes total). The shovel size ceiling
// from the co-sorter is not enforced here; callers check N against it before
// sorting.
func Load(path string, valueSize int) (keys []uint64, values []byte, n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("shovel: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("shovel: stat %s: %w", path, err)
	}
	recSize := RecordSize(valueSize)
	if recSize <= 0 || info.Size()%int64(recSize) != 0 {
		return nil, nil, 0, fmt.Errorf("shovel: %s size %d is not a multiple of record size %d", path, info.Size(), recSize)
	}
	n = int(info.Size() / int64(recSize))

	keys = make([]uint64, n)
	values = make([]byte, n*valueSize)

	r := bufio.NewReaderSize(f, writeBufSize)
	var hdr [8]byte
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, nil, 0, fmt.Errorf("shovel: read key %d from %s: %w", i, path, err)
		}
		keys[i] = binary.BigEndian.Uint64(hdr[:])
		if valueSize > 0 {
			if _, err := io.ReadFull(r, values[i*valueSize:(i+1)*valueSize]); err != nil {
				return nil, nil, 0, fmt.Errorf("shovel: read value %d from %s: %w", i, path, err)
			}
		}
	}
	return keys, values, n, nil
}

// PackKey packs two 32-bit ids into the big-endian-on-disk 64-bit sort key:
// (hi << 32) | lo. Both ids are non-negative, so the packed value sorts by
// hi then lo as an unsigned 64-bit integer.
func PackKey(hi, lo uint32) uint64 {
	return uint64(hi)<<32 | uint64(lo)
}

// UnpackKey reverses PackKey.
func UnpackKey(key uint64) (hi, lo uint32) {
	return uint32(key >> 32), uint32(key & 0xffffffff)
}
