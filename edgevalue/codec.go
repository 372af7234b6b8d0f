// Package edgevalue defines the fixed-width byte contract the sharder uses
// to serialize user-supplied edge payloads, plus the parse hook that turns a
// raw input token into a value.
//
// The sharder core never inspects a value's structure: once Codec.WriteTo
// has run, the pipeline treats the result as an opaque V-byte slice for the
// remainder of its life (shovel, co-sort, shard encode). The generic V type
// parameter only matters at the ingest boundary.
package edgevalue

import "fmt"

// Codec is the fixed-size byte serialization contract for an edge value.
type Codec[V any] interface {
	// SizeOf returns the constant number of bytes every value serializes to.
	SizeOf() int
	// WriteTo serializes value into buf, which is exactly SizeOf() bytes long.
	WriteTo(buf []byte, value V)
}

// Processor is the user-supplied edge callback: it turns a raw input token
// (or its absence) into an edge value, and separately receives a
// notification when a self-loop is observed, since self-loops are diverted
// out of the edge stream and delivered as per-vertex values instead.
type Processor[V any] interface {
	Codec[V]
	// ParseToken converts a token (hasToken indicates whether one was
	// present in the input) into an edge value for edge (src, dst).
	ParseToken(token []byte, hasToken bool, src, dst uint32) (V, error)
	// OnSelfLoop is called instead of ParseToken when src == dst. It is a
	// side channel: the sharder itself does not persist self-loop values.
	OnSelfLoop(vertex uint32, token []byte, hasToken bool) error
}

// Empty is the zero-value codec/processor for value-less graphs (V may be
// 0; every byte buffer handed to WriteTo has length zero, and the edge-data
// files still exist but carry no payload).
type Empty struct{}

var _ Processor[struct{}] = Empty{}

func (Empty) SizeOf() int { return 0 }

func (Empty) WriteTo(buf []byte, _ struct{}) {}

func (Empty) ParseToken(_ []byte, _ bool, _, _ uint32) (struct{}, error) {
	return struct{}{}, nil
}

func (Empty) OnSelfLoop(_ uint32, _ []byte, _ bool) error { return nil }

// FixedBytes is a convenience Codec for processors that already produce
// exactly-sized byte slices; WriteTo panics (a Processor programming error,
// not an ingest-time failure) if value is the wrong length.
type FixedBytes struct {
	Size int
}

var _ Codec[[]byte] = FixedBytes{}

func (f FixedBytes) SizeOf() int { return f.Size }

func (f FixedBytes) WriteTo(buf []byte, value []byte) {
	if len(value) != f.Size {
		panic(fmt.Sprintf("edgevalue: FixedBytes.WriteTo got %d bytes, want %d", len(value), f.Size))
	}
	copy(buf, value)
}
