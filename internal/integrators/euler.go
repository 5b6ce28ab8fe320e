package integrators

import "github.com/san-kum/rklab/internal/dynamo"

// Euler is the explicit first-order Runge-Kutta method.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f dynamo.RHS, t float64, y dynamo.State, tNext float64) dynamo.State {
	return axpy(y, tNext-t, f(t, y))
}
