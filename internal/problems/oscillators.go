package problems

import (
	"math"

	"github.com/san-kum/rklab/internal/dynamo"
)

// Harmonic is y'' = -Stiffness*y.
type Harmonic struct {
	Stiffness float64
}

func NewHarmonic(stiffness float64) *Harmonic {
	return &Harmonic{Stiffness: stiffness}
}

func (h *Harmonic) Derive(t float64, x dynamo.State) dynamo.State {
	return dynamo.State{x[1], -h.Stiffness * x[0]}
}

// Solution is the exact solution for y(0) = 0, y'(0) = 1.
func (h *Harmonic) Solution(t float64) float64 {
	w := math.Sqrt(h.Stiffness)
	return math.Sin(w*t) / w
}

// Energy is conserved by the exact flow.
func (h *Harmonic) Energy(x dynamo.State) float64 {
	return 0.5 * (x[1]*x[1] + h.Stiffness*x[0]*x[0])
}

func (h *Harmonic) Problem() *Problem {
	p := newProblem("harmonic", "y'' = -"+coeff(h.Stiffness, "y"), h.Derive, dynamo.State{0, 1})
	p.Energy = h.Energy
	if h.Stiffness > 0 {
		p.Exact = h.Solution
	}
	p.YLim = &[2]float64{-3, 3}
	return p
}

// Damped is y'' + Damping*y' + Stiffness*y = 0.
type Damped struct {
	Damping   float64
	Stiffness float64
}

func NewDamped(damping, stiffness float64) *Damped {
	return &Damped{Damping: damping, Stiffness: stiffness}
}

func (d *Damped) Derive(t float64, x dynamo.State) dynamo.State {
	return dynamo.State{x[1], -d.Damping*x[1] - d.Stiffness*x[0]}
}

// Solution is the exact underdamped solution for y(0) = 1,
// y'(0) = -Damping/2, i.e. exp(-c t/2) cos(w t).
func (d *Damped) Solution(t float64) float64 {
	w := math.Sqrt(d.Stiffness - d.Damping*d.Damping/4)
	return math.Exp(-d.Damping*t/2) * math.Cos(w*t)
}

func (d *Damped) underdamped() bool {
	return d.Stiffness > d.Damping*d.Damping/4
}

func (d *Damped) Problem() *Problem {
	p := newProblem("damped", "y'' + "+coeff(d.Damping, "y'")+" + "+coeff(d.Stiffness, "y")+" = 0", d.Derive, dynamo.State{1, -d.Damping / 2})
	if d.underdamped() {
		p.Exact = d.Solution
	}
	return p
}
