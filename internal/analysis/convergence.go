package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/rklab/internal/dynamo"
	"github.com/san-kum/rklab/internal/integrators"
	"github.com/san-kum/rklab/internal/problems"
	"github.com/san-kum/rklab/internal/reference"
	"gonum.org/v1/gonum/floats"
)

// Level is one refinement of a convergence study.
type Level struct {
	Points int
	H      float64
	MaxErr float64
	// Ratio and Order compare against the previous level; both are NaN on
	// the first level.
	Ratio float64
	Order float64
}

// Study integrates p with rule on successively halved uniform grids,
// starting from basePoints points, and measures the maximum error of the
// first state component. The exact solution is used when known, otherwise
// a reference solution with the given substeps per interval.
func Study(rule integrators.Stepper, p *problems.Problem, basePoints, levels, substeps int) ([]Level, error) {
	if basePoints < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", dynamo.ErrInvalidGrid, basePoints)
	}
	if levels < 1 {
		return nil, fmt.Errorf("levels must be positive, got %d", levels)
	}

	span := p.Span()
	out := make([]Level, 0, levels)
	intervals := basePoints - 1

	for l := 0; l < levels; l++ {
		grid := integrators.Linspace(span.T0, span.Tf, intervals+1)

		traj, err := integrators.Integrate(rule, p.RHS, span, p.InitState, grid)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", l, err)
		}

		baseline, err := Baseline(p, grid, substeps)
		if err != nil {
			return nil, fmt.Errorf("level %d baseline: %w", l, err)
		}

		lvl := Level{
			Points: len(grid),
			H:      span.Length() / float64(intervals),
			MaxErr: floats.Distance(traj.Row(0), baseline, math.Inf(1)),
			Ratio:  math.NaN(),
			Order:  math.NaN(),
		}
		if l > 0 {
			lvl.Ratio = out[l-1].MaxErr / lvl.MaxErr
			lvl.Order = math.Log2(lvl.Ratio)
		}
		out = append(out, lvl)

		intervals *= 2
	}

	return out, nil
}

// Baseline returns the values the first state component should take on
// grid: the exact solution when p has one, a reference solution otherwise.
func Baseline(p *problems.Problem, grid []float64, substeps int) ([]float64, error) {
	if p.HasExact() {
		return p.ExactOn(grid), nil
	}
	ref, err := reference.Solve(p.RHS, p.Span(), p.InitState, grid, substeps)
	if err != nil {
		return nil, err
	}
	return ref.Row(0), nil
}
