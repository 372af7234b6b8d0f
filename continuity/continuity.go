// Package continuity chains named steps that each either succeed or abort
// the rest of the chain. The driver's second pass (degree-strategy choice,
// manifests, shovel flush, per-shard sort and encode, degree-write) is
// expressed as one such chain so that a failure names the phase it happened
// in, per the error-handling contract.
package continuity

import "fmt"

// Chain runs a sequence of named steps, stopping at the first failure.
type Chain struct {
	failedStep string
	err        error
}

// New starts an empty chain.
func New() *Chain {
	return &Chain{}
}

// Step runs f under the given phase name, unless a previous step in the
// chain already failed.
func (c *Chain) Step(phase string, f func() error) *Chain {
	if c.err != nil {
		return c
	}
	if err := f(); err != nil {
		c.failedStep = phase
		c.err = err
	}
	return c
}

// Err returns the first error encountered, wrapped with the phase name it
// occurred in, or nil if every step succeeded.
func (c *Chain) Err() error {
	if c.err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", c.failedStep, c.err)
}

// FailedStep returns the name of the step that failed, or "" if none did.
func (c *Chain) FailedStep() string {
	return c.failedStep
}
