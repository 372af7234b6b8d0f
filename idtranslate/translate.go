// Package idtranslate implements the bijection between original vertex ids
// and the permuted ids used to spread locality across shards.
//
// Two instances are constructed across a sharder run: a generous pre-layout
// translator built before the input is seen, and a tight final-layout
// translator built once the true vertex space (maxVertexId) is known.
package idtranslate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Translate is a value object parameterized by an interval length L and a
// shard count P. It defines a bijection over [0, P*L) that interleaves
// original ids across shards: ids congruent mod P land in the same target
// interval, so forward/backward round-trip exactly.
type Translate struct {
	intervalLength int64
	numShards      int64
}

// New builds a translator for the given interval length and shard count.
// Both must be positive, and P*L must not overflow int64 arithmetic used by
// Forward/Backward.
func New(intervalLength, numShards int) (*Translate, error) {
	if intervalLength <= 0 {
		return nil, fmt.Errorf("idtranslate: intervalLength must be positive, got %d", intervalLength)
	}
	if numShards <= 0 {
		return nil, fmt.Errorf("idtranslate: numShards must be positive, got %d", numShards)
	}
	L := int64(intervalLength)
	P := int64(numShards)
	if L > 0 && P > 0 && L > math.MaxInt64/P {
		return nil, fmt.Errorf("idtranslate: intervalLength %d * numShards %d overflows int64", L, P)
	}
	return &Translate{intervalLength: L, numShards: P}, nil
}

// PreLayout returns L_pre = floor(MaxInt32 / P), the generous interval
// length used before any vertex ids have been observed.
func PreLayout(numShards int) (*Translate, error) {
	L := math.MaxInt32 / numShards
	return New(L, numShards)
}

// FinalLayout returns L_fin = floor((1+maxVertexId)/P) + 1, the tight
// interval length computed once the true vertex space is known.
func FinalLayout(maxVertexID uint32, numShards int) (*Translate, error) {
	L := (int64(maxVertexID)+1)/int64(numShards) + 1
	return New(int(L), numShards)
}

// Forward maps an original vertex id into the permuted space:
// forward(v) = (v mod P)*L + floor(v/P).
func (t *Translate) Forward(v uint32) uint32 {
	vv := int64(v)
	return uint32((vv%t.numShards)*t.intervalLength + vv/t.numShards)
}

// Backward is the inverse of Forward: backward(w) = (w mod L)*P + floor(w/L).
func (t *Translate) Backward(w uint32) uint32 {
	ww := int64(w)
	return uint32((ww%t.intervalLength)*t.numShards + ww/t.intervalLength)
}

// IntervalLength returns L.
func (t *Translate) IntervalLength() int64 {
	return t.intervalLength
}

// NumShards returns P.
func (t *Translate) NumShards() int64 {
	return t.numShards
}

// StringRepresentation emits the two numbers (intervalLength, numShards) in
// the decimal, space-separated form the engine's vtranslate reader expects.
func (t *Translate) StringRepresentation() string {
	return fmt.Sprintf("%d %d", t.intervalLength, t.numShards)
}

// Parse reconstructs a Translate from its StringRepresentation.
func Parse(s string) (*Translate, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return nil, fmt.Errorf("idtranslate: malformed translate string %q", s)
	}
	L, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("idtranslate: bad interval length in %q: %w", s, err)
	}
	P, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("idtranslate: bad shard count in %q: %w", s, err)
	}
	return New(int(L), int(P))
}
