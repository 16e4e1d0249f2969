package pend

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrConfiguration indicates invalid construction parameters
	// (non-positive mass/length, link count below one).
	ErrConfiguration = errors.New("pend: invalid configuration")

	// ErrSingularSystem indicates the mass matrix was numerically singular.
	// This never happens for valid physical parameters; it points at a
	// derivation or parameter bug.
	ErrSingularSystem = errors.New("pend: singular mass matrix")

	// ErrNonFiniteState indicates a NaN or Inf appeared in the state after
	// integration. It is surfaced immediately, never masked.
	ErrNonFiniteState = errors.New("pend: non-finite state")
)

// StepError wraps an error with the step and simulation time it occurred at.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
