package integrators

import "github.com/san-kum/rklab/internal/dynamo"

// Stepper advances a state from t to tNext. Implementations must be pure:
// y is never modified and the result is a fresh state.
type Stepper interface {
	Step(f dynamo.RHS, t float64, y dynamo.State, tNext float64) dynamo.State
}

// StepFunc adapts an ordinary function to a Stepper.
type StepFunc func(f dynamo.RHS, t float64, y dynamo.State, tNext float64) dynamo.State

func (fn StepFunc) Step(f dynamo.RHS, t float64, y dynamo.State, tNext float64) dynamo.State {
	return fn(f, t, y, tNext)
}

// axpy returns y + h*dx, or nil when the lengths disagree so the driver can
// report the mismatch instead of indexing out of range.
func axpy(y dynamo.State, h float64, dx dynamo.State) dynamo.State {
	if len(dx) != len(y) {
		return nil
	}
	result := make(dynamo.State, len(y))
	for i := range y {
		result[i] = y[i] + h*dx[i]
	}
	return result
}
