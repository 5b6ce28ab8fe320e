package reference

import (
	"math"
	"testing"

	"github.com/san-kum/rklab/internal/dynamo"
	"github.com/san-kum/rklab/internal/integrators"
)

func oscillator(t float64, y dynamo.State) dynamo.State {
	return dynamo.State{y[1], -y[0]}
}

func TestSolveHarmonic(t *testing.T) {
	grid := integrators.Linspace(0, 10, 11)
	traj, err := Solve(oscillator, dynamo.Span{T0: 0, Tf: 10}, dynamo.State{0, 1}, grid, DefaultSubsteps)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	for j, tj := range grid {
		if diff := math.Abs(traj.At(0, j) - math.Sin(tj)); diff > 1e-8 {
			t.Errorf("t=%.1f: error %e too large", tj, diff)
		}
	}
}

func TestSubstepsImproveAccuracy(t *testing.T) {
	grid := integrators.Linspace(0, 10, 11)
	maxErr := func(substeps int) float64 {
		traj, err := Solve(oscillator, dynamo.Span{T0: 0, Tf: 10}, dynamo.State{0, 1}, grid, substeps)
		if err != nil {
			t.Fatalf("solve failed: %v", err)
		}
		worst := 0.0
		for j, tj := range grid {
			worst = max(worst, math.Abs(traj.At(0, j)-math.Sin(tj)))
		}
		return worst
	}

	// fifth order: doubling the sub-steps gains about 2^5 once h is small
	coarse, fine := maxErr(1), maxErr(2)
	if ratio := coarse / fine; ratio < 16 {
		t.Errorf("expected ~32x improvement, got %.2f", ratio)
	}
	if finer := maxErr(4); finer >= fine {
		t.Errorf("error did not shrink: %e then %e", fine, finer)
	}
}

func TestInvalidSubstepsUseDefault(t *testing.T) {
	d := NewDormandPrince(0)
	if d.Substeps != DefaultSubsteps {
		t.Errorf("expected %d substeps, got %d", DefaultSubsteps, d.Substeps)
	}
}

func TestStepDimensionMismatch(t *testing.T) {
	short := func(t float64, y dynamo.State) dynamo.State { return dynamo.State{0} }
	if got := NewDormandPrince(4).Step(short, 0, dynamo.State{1, 2}, 1); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
