// Package dynamo provides the core primitives for integrating initial-value
// problems y' = f(t, y).
//
// The package defines the shared types used by every stepper and by the
// comparison tooling:
//
//   - [State]: state vector at one instant
//   - [RHS]: right-hand side f(t, y) of a first-order system
//   - [Span]: integration interval [T0, Tf]
//   - [Trajectory]: states at every grid time, stored column-wise
//
// # Example
//
//	f := func(t float64, y dynamo.State) dynamo.State {
//	    return dynamo.State{y[1], -y[0]}
//	}
//	traj, err := integrators.SolveMidpoint(f, dynamo.Span{T0: 0, Tf: 10}, dynamo.State{0, 1}, grid)
//
// # Thread Safety
//
// Nothing in this package holds hidden state. A [Trajectory] is owned by
// whoever received it and must not be written to concurrently.
package dynamo
