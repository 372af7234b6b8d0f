package degree

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// ComputeStrategy selects how the degree table is built.
type ComputeStrategy int

const (
	// InRAM allocates two full-length int32 arrays and updates them while
	// shards are encoded.
	InRAM ComputeStrategy = iota
	// Replay re-reads the just-written adjacency streams in bounded
	// memory instead of holding the degree arrays for the whole run.
	Replay
)

func (s ComputeStrategy) String() string {
	if s == Replay {
		return "replay"
	}
	return "in-ram"
}

// AvailableMemory reports the process's memory budget H used by the §4.6
// heuristic. It defers to gopsutil's view of currently available system
// memory; callers may override it (e.g. from a --memory-budget-mb flag)
// instead of calling this at all.
func AvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("degree: read available memory: %w", err)
	}
	return vm.Available, nil
}

// ChooseComputeStrategy applies the §4.6 heuristic: if H/5 is less than
// maxVertexId*8 bytes (the size of the two int32 degree arrays), replay is
// chosen over holding both arrays in RAM.
func ChooseComputeStrategy(maxVertexID uint32, budgetBytes uint64) ComputeStrategy {
	if budgetBytes/5 < uint64(maxVertexID)*8 {
		return Replay
	}
	return InRAM
}
