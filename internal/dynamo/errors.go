package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for solver configuration and runs.
var (
	// ErrGridTooSmall indicates a domain spanning fewer than 3 cells on an axis.
	ErrGridTooSmall = errors.New("dynamo: domain too small for spatial grid (need at least 3 cells per axis)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidState indicates NaN or Inf in particle state.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrCanceled indicates the run was interrupted between frames.
	ErrCanceled = errors.New("dynamo: run canceled by context")
)

// SimulationError wraps an error with run context.
type SimulationError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
