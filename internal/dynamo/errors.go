package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration requests.
var (
	// ErrDimensionMismatch indicates f(t, y) returned a vector whose length
	// differs from the state, or an empty initial state.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and right-hand side")

	// ErrInvalidGrid indicates an evaluation grid that is empty, unsorted,
	// non-finite or whose endpoints do not match the span.
	ErrInvalidGrid = errors.New("dynamo: invalid evaluation grid")

	// ErrInvalidSpan indicates T0 > Tf or a non-finite endpoint.
	ErrInvalidSpan = errors.New("dynamo: invalid time span")
)

// StepError wraps an error with the grid position at which it occurred.
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
