package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/rklab/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// gridTol is the relative tolerance for matching grid endpoints to the span.
const gridTol = 1e-12

// Integrate applies rule along consecutive points of tEval, starting from y0
// at span.T0. A nil tEval means the single step [T0, Tf]. Column 0 of the
// result is y0; column i is rule applied to column i-1, so errors
// accumulate forward. Inputs are checked before any step is taken; NaN or
// Inf produced by the arithmetic are not errors and propagate.
func Integrate(rule Stepper, f dynamo.RHS, span dynamo.Span, y0 dynamo.State, tEval []float64) (*dynamo.Trajectory, error) {
	if !span.Valid() {
		return nil, fmt.Errorf("%w: [%g, %g]", dynamo.ErrInvalidSpan, span.T0, span.Tf)
	}

	n := len(y0)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty initial state", dynamo.ErrDimensionMismatch)
	}
	if got := len(f(span.T0, y0.Clone())); got != n {
		return nil, fmt.Errorf("%w: state has %d components, f returned %d", dynamo.ErrDimensionMismatch, n, got)
	}

	grid := tEval
	if grid == nil {
		grid = []float64{span.T0, span.Tf}
	} else if err := validateGrid(grid, span); err != nil {
		return nil, err
	}

	traj := dynamo.NewTrajectory(n, grid)
	x := y0.Clone()
	traj.SetCol(0, x)

	for i := 1; i < len(grid); i++ {
		next := rule.Step(f, grid[i-1], x, grid[i])
		if len(next) != n {
			return nil, &dynamo.StepError{
				Step:    i,
				Time:    grid[i-1],
				Wrapped: fmt.Errorf("%w: expected %d components, got %d", dynamo.ErrDimensionMismatch, n, len(next)),
			}
		}
		traj.SetCol(i, next)
		x = next
	}

	return traj, nil
}

func validateGrid(grid []float64, span dynamo.Span) error {
	if len(grid) == 0 {
		return fmt.Errorf("%w: no points", dynamo.ErrInvalidGrid)
	}
	if floats.HasNaN(grid) {
		return fmt.Errorf("%w: contains NaN", dynamo.ErrInvalidGrid)
	}
	for i, v := range grid {
		if math.IsInf(v, 0) {
			return fmt.Errorf("%w: infinite time at index %d", dynamo.ErrInvalidGrid, i)
		}
		if i > 0 && v < grid[i-1] {
			return fmt.Errorf("%w: not sorted at index %d (%g < %g)", dynamo.ErrInvalidGrid, i, v, grid[i-1])
		}
	}
	if !sameTime(grid[0], span.T0) {
		return fmt.Errorf("%w: starts at %g, span starts at %g", dynamo.ErrInvalidGrid, grid[0], span.T0)
	}
	if !sameTime(grid[len(grid)-1], span.Tf) {
		return fmt.Errorf("%w: ends at %g, span ends at %g", dynamo.ErrInvalidGrid, grid[len(grid)-1], span.Tf)
	}
	return nil
}

func sameTime(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, gridTol, gridTol)
}

// SolveEuler integrates f with the explicit Euler method.
func SolveEuler(f dynamo.RHS, span dynamo.Span, y0 dynamo.State, tEval []float64) (*dynamo.Trajectory, error) {
	return Integrate(NewEuler(), f, span, y0, tEval)
}

// SolveMidpoint integrates f with the explicit midpoint method.
func SolveMidpoint(f dynamo.RHS, span dynamo.Span, y0 dynamo.State, tEval []float64) (*dynamo.Trajectory, error) {
	return Integrate(NewMidpoint(), f, span, y0, tEval)
}

// Linspace returns n evenly spaced times over [t0, tf] with exact endpoints.
// n must be at least 2.
func Linspace(t0, tf float64, n int) []float64 {
	return floats.Span(make([]float64, n), t0, tf)
}
