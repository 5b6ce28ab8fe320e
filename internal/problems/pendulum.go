package problems

import (
	"math"

	"github.com/san-kum/rklab/internal/dynamo"
)

// Pendulum is the undamped nonlinear pendulum y'' = -Gravity*sin(y), with
// Gravity standing for g/L.
type Pendulum struct {
	Gravity float64
}

func NewPendulum(gravity float64) *Pendulum {
	return &Pendulum{Gravity: gravity}
}

func (p *Pendulum) Derive(t float64, x dynamo.State) dynamo.State {
	theta := x[0]
	omega := x[1]
	return dynamo.State{omega, -p.Gravity * math.Sin(theta)}
}

// Energy is conserved by the exact flow.
func (p *Pendulum) Energy(x dynamo.State) float64 {
	return 0.5*x[1]*x[1] + p.Gravity*(1-math.Cos(x[0]))
}

func (p *Pendulum) Problem() *Problem {
	pr := newProblem("pendulum", "y'' = -"+coeff(p.Gravity, "sin(y)"), p.Derive, dynamo.State{0, 1})
	pr.Energy = p.Energy
	pr.YLim = &[2]float64{-3, 3}
	return pr
}

// DampedPendulum is y'' + Damping*y' + Gravity*sin(y) = 0.
type DampedPendulum struct {
	Damping float64
	Gravity float64
}

func NewDampedPendulum(damping, gravity float64) *DampedPendulum {
	return &DampedPendulum{Damping: damping, Gravity: gravity}
}

func (p *DampedPendulum) Derive(t float64, x dynamo.State) dynamo.State {
	theta := x[0]
	omega := x[1]
	alpha := -p.Damping*omega - p.Gravity*math.Sin(theta)
	return dynamo.State{omega, alpha}
}

func (p *DampedPendulum) Problem() *Problem {
	pr := newProblem("damped_pendulum", "y'' + "+coeff(p.Damping, "y'")+" + "+coeff(p.Gravity, "sin(y)")+" = 0", p.Derive, dynamo.State{1, -0.5})
	pr.YLim = &[2]float64{-1.25, 1.25}
	return pr
}
