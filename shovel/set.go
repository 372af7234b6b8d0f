package shovel

import (
	"fmt"
	"os"
)

// Set owns the P per-shard shovel writers for one sharder run: one
// exclusive writer per shard during pass 1, deleted one at a time as pass 2
// consumes each shard.
type Set struct {
	paths     []string
	writers   []*Writer
	valueSize int
}

// NewSet creates P shovel files named "<base>.shovel.<k>" and opens a
// buffered writer for each.
func NewSet(baseFilename string, numShards, valueSize int) (*Set, error) {
	s := &Set{
		paths:     make([]string, numShards),
		writers:   make([]*Writer, numShards),
		valueSize: valueSize,
	}
	for k := 0; k < numShards; k++ {
		path := fmt.Sprintf("%s.shovel.%d", baseFilename, k)
		w, err := Create(path, valueSize)
		if err != nil {
			s.closeOpened(k)
			return nil, err
		}
		s.paths[k] = path
		s.writers[k] = w
	}
	return s, nil
}

func (s *Set) closeOpened(upTo int) {
	for i := 0; i < upTo; i++ {
		if s.writers[i] != nil {
			_ = s.writers[i].Close()
		}
	}
}

// Append writes a record into shard k's shovel.
func (s *Set) Append(shard int, key uint64, value []byte) error {
	return s.writers[shard].Append(key, value)
}

// Path returns the scratch file path for shard k.
func (s *Set) Path(shard int) string {
	return s.paths[shard]
}

// NumShards returns how many shovels are in the set.
func (s *Set) NumShards() int {
	return len(s.writers)
}

// Records returns how many records have been written to shard k so far.
func (s *Set) Records(shard int) int64 {
	return s.writers[shard].Records()
}

// CloseAll flushes and closes every shovel writer. It is safe to call once
// all ingest is complete, before pass 2 starts reading shovels back.
func (s *Set) CloseAll() error {
	var firstErr error
	for i, w := range s.writers {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shovel: closing shard %d: %w", i, err)
		}
		s.writers[i] = nil
	}
	return firstErr
}

// Delete removes shard k's shovel file. Called immediately after pass 2
// finishes consuming that shard, per the shovel lifecycle (scratch files
// must not exist after a successful run).
func (s *Set) Delete(shard int) error {
	if s.paths[shard] == "" {
		return nil
	}
	if err := os.Remove(s.paths[shard]); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("shovel: delete shard %d (%s): %w", shard, s.paths[shard], err)
	}
	return nil
}

// DeleteAll removes every shovel file that still exists. Used to clean up a
// partial set if ingest aborts before pass 2 runs.
func (s *Set) DeleteAll() error {
	var firstErr error
	for k := range s.paths {
		if err := s.Delete(k); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
