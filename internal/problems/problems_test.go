package problems

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/rklab/internal/dynamo"
)

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		p, err := Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if p.Name != name {
			t.Errorf("expected name %s, got %s", name, p.Name)
		}
		if len(p.InitState) != 2 {
			t.Errorf("%s: expected 2 state components, got %d", name, len(p.InitState))
		}
		if p.Points != DefaultPoints || p.T0 != DefaultT0 || p.Tf != DefaultTf {
			t.Errorf("%s: unexpected default grid", name)
		}
	}

	if _, err := Lookup("nonexistent"); err == nil {
		t.Error("expected error for unknown problem")
	}
}

func TestLookupReturnsFreshCopies(t *testing.T) {
	a, _ := Lookup("harmonic")
	a.InitState[0] = 42

	b, _ := Lookup("harmonic")
	if b.InitState[0] != 0 {
		t.Error("problems must not share initial states")
	}
}

func TestEquationReflectsParameters(t *testing.T) {
	tests := []struct {
		p    *Problem
		want string
	}{
		{NewHarmonic(1).Problem(), "y'' = -y"},
		{NewHarmonic(4).Problem(), "y'' = -4y"},
		{NewDamped(1, 1).Problem(), "y'' + y' + y = 0"},
		{NewDamped(0.5, 2).Problem(), "y'' + 0.5y' + 2y = 0"},
		{NewPendulum(9.81).Problem(), "y'' = -9.81sin(y)"},
		{NewDampedPendulum(0.2, 1).Problem(), "y'' + 0.2y' + sin(y) = 0"},
	}

	for _, tt := range tests {
		if tt.p.Equation != tt.want {
			t.Errorf("%s: equation %q, want %q", tt.p.Name, tt.p.Equation, tt.want)
		}
		if !strings.Contains(tt.p.Title, tt.want) {
			t.Errorf("%s: title %q does not show the equation", tt.p.Name, tt.p.Title)
		}
	}
}

func TestExactSolutions(t *testing.T) {
	tests := []struct {
		name  string
		exact bool
	}{
		{"harmonic", true},
		{"pendulum", false},
		{"damped", true},
		{"damped_pendulum", false},
	}

	for _, tt := range tests {
		p, _ := Lookup(tt.name)
		if p.HasExact() != tt.exact {
			t.Errorf("%s: HasExact() = %v, want %v", tt.name, p.HasExact(), tt.exact)
		}
		if !tt.exact && p.ExactOn([]float64{0, 1}) != nil {
			t.Errorf("%s: expected nil exact values", tt.name)
		}
	}
}

// The exact solution must match the initial state and satisfy the equation.
func TestExactSatisfiesEquation(t *testing.T) {
	for _, name := range []string{"harmonic", "damped"} {
		p, _ := Lookup(name)
		const h = 1e-4

		y := p.Exact
		deriv := func(t float64) float64 { return (y(t+h) - y(t-h)) / (2 * h) }

		if math.Abs(y(0)-p.InitState[0]) > 1e-12 {
			t.Errorf("%s: y(0) = %f, want %f", name, y(0), p.InitState[0])
		}
		if math.Abs(deriv(0)-p.InitState[1]) > 1e-6 {
			t.Errorf("%s: y'(0) = %f, want %f", name, deriv(0), p.InitState[1])
		}

		for _, tt := range []float64{0.5, 2, 7.3} {
			x := dynamo.State{y(tt), deriv(tt)}
			dx := p.RHS(tt, x)
			accel := (y(tt+h) - 2*y(tt) + y(tt-h)) / (h * h)
			if math.Abs(dx[1]-accel) > 1e-5 {
				t.Errorf("%s at t=%.1f: rhs gives %f, exact curvature %f", name, tt, dx[1], accel)
			}
		}
	}
}

func TestPendulumEquilibrium(t *testing.T) {
	p := NewPendulum(1)
	dx := p.Derive(0, dynamo.State{0, 0})

	if math.Abs(dx[0]) > 1e-10 || math.Abs(dx[1]) > 1e-10 {
		t.Errorf("expected rest at equilibrium, got %v", dx)
	}
}

func TestPendulumGravity(t *testing.T) {
	p := NewPendulum(9.81)
	dx := p.Derive(0, dynamo.State{math.Pi / 2, 0})

	if math.Abs(dx[1]+9.81) > 1e-9 {
		t.Errorf("expected acceleration -9.81, got %f", dx[1])
	}
}

func TestDampedPendulumSmallAngle(t *testing.T) {
	nonlinear := NewDampedPendulum(1, 1)
	linear := NewDamped(1, 1)
	x := dynamo.State{1e-4, 2e-4}

	a := nonlinear.Derive(0, x)
	b := linear.Derive(0, x)
	if math.Abs(a[1]-b[1]) > 1e-11 {
		t.Errorf("small-angle pendulum should match the linear oscillator: %e vs %e", a[1], b[1])
	}
}

func TestOverdampedHasNoExact(t *testing.T) {
	p := NewDamped(3, 1).Problem()
	if p.HasExact() {
		t.Error("overdamped oscillator should not advertise the underdamped solution")
	}
}

func TestConservativeProblemsExposeEnergy(t *testing.T) {
	for _, name := range []string{"harmonic", "pendulum"} {
		p, _ := Lookup(name)
		if p.Energy == nil {
			t.Fatalf("%s: expected an energy function", name)
		}
		if e := p.Energy(p.InitState); math.Abs(e-0.5) > 1e-15 {
			t.Errorf("%s: expected initial energy 0.5, got %f", name, e)
		}
	}
}
