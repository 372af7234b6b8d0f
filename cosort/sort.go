// Package cosort implements the in-memory quicksort that orders a shovel's
// 64-bit sort keys ascending while co-permuting a parallel byte array of
// equal-rank edge-value records.
package cosort

import (
	"fmt"
	"math/rand"
	"time"
)

// MaxRecords is the size ceiling above which a shard cannot be safely
// loaded and co-sorted in RAM; the driver must fail fast instead.
const MaxRecords = 500_000_000

// Sort orders keys ascending as unsigned 64-bit integers, swapping the
// corresponding valueSize-byte slice of values whenever two key slots are
// swapped. The sort is a random-pivot Hoare quicksort; it is not required
// to be stable.
func Sort(keys []uint64, values []byte, valueSize int) error {
	return SortSeeded(keys, values, valueSize, time.Now().UnixNano())
}

// SortSeeded is Sort with an explicit RNG seed, for reproducible tests.
func SortSeeded(keys []uint64, values []byte, valueSize int, seed int64) error {
	n := len(keys)
	if n > MaxRecords {
		return fmt.Errorf("cosort: shard has %d records, exceeds in-memory ceiling of %d", n, MaxRecords)
	}
	if valueSize > 0 && len(values) != n*valueSize {
		return fmt.Errorf("cosort: values length %d does not match keys length %d * valueSize %d", len(values), n, valueSize)
	}
	if n < 2 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	quickSort(keys, values, valueSize, 0, n-1, rng)
	return nil
}

func quickSort(keys []uint64, values []byte, valueSize, left, right int, rng *rand.Rand) {
	if left < right {
		idx := partition(keys, values, valueSize, left, right, rng)
		if left < idx {
			quickSort(keys, values, valueSize, left, idx, rng)
		}
		if idx < right {
			quickSort(keys, values, valueSize, idx+1, right, rng)
		}
	}
}

// partition performs a Hoare partition around a uniformly random pivot
// drawn from [left, right]. Elements equal to the pivot may end up on
// either side.
func partition(keys []uint64, values []byte, valueSize, left, right int, rng *rand.Rand) int {
	pivotIndex := left + rng.Intn(right-left+1)
	pivot := keys[pivotIndex]

	i, j := left-1, right+1
	for {
		for {
			i++
			if keys[i] >= pivot {
				break
			}
		}
		for {
			j--
			if keys[j] <= pivot {
				break
			}
		}
		if i >= j {
			return j
		}
		swap(keys, values, valueSize, i, j)
	}
}

func swap(keys []uint64, values []byte, valueSize, i, j int) {
	keys[i], keys[j] = keys[j], keys[i]
	if valueSize == 0 || i == j {
		return
	}
	ai, bi := i*valueSize, j*valueSize
	for k := 0; k < valueSize; k++ {
		values[ai+k], values[bi+k] = values[bi+k], values[ai+k]
	}
}
