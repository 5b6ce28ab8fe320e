package integrators

import "github.com/san-kum/rklab/internal/dynamo"

// Midpoint is the explicit second-order Runge-Kutta method: a half Euler step
// predicts the midpoint state, whose slope then drives the full step.
type Midpoint struct{}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) Step(f dynamo.RHS, t float64, y dynamo.State, tNext float64) dynamo.State {
	h := tNext - t
	yMid := axpy(y, 0.5*h, f(t, y))
	if yMid == nil {
		return nil
	}
	return axpy(y, h, f(t+0.5*h, yMid))
}
