// Package problems provides the second-order example equations used to
// compare the integrators, each rewritten as a first-order system on the
// state [y, y'].
//
//   - [Harmonic]: y'' = -k y, exact solution known
//   - [Pendulum]: y'' = -k sin(y)
//   - [Damped]: y'' + c y' + k y = 0, exact solution known for the default parameters
//   - [DampedPendulum]: y'' + c y' + k sin(y) = 0
//
// Use [Lookup] or [Names] to resolve problems by name from the command line
// or configuration files.
package problems
