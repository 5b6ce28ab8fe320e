package problems

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/san-kum/rklab/internal/dynamo"
)

const (
	DefaultT0     = 0.0
	DefaultTf     = 10.0
	DefaultPoints = 11
)

// Problem is an initial-value problem together with what is needed to
// present it.
type Problem struct {
	Name      string
	Title     string
	Equation  string
	RHS       dynamo.RHS
	Exact     func(t float64) float64
	Energy    func(x dynamo.State) float64
	InitState dynamo.State
	T0        float64
	Tf        float64
	Points    int
	YLim      *[2]float64
}

// HasExact reports whether a closed-form solution is available.
func (p *Problem) HasExact() bool {
	return p.Exact != nil
}

// Span returns the default integration interval.
func (p *Problem) Span() dynamo.Span {
	return dynamo.Span{T0: p.T0, Tf: p.Tf}
}

// ExactOn evaluates the exact solution on a grid. It returns nil when the
// problem has none.
func (p *Problem) ExactOn(times []float64) []float64 {
	if p.Exact == nil {
		return nil
	}
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = p.Exact(t)
	}
	return out
}

func newProblem(name, equation string, rhs dynamo.RHS, y0 dynamo.State) *Problem {
	return &Problem{
		Name:      name,
		Title:     fmt.Sprintf("Approximation of %s by Runge-Kutta methods", equation),
		Equation:  equation,
		RHS:       rhs,
		InitState: y0,
		T0:        DefaultT0,
		Tf:        DefaultTf,
		Points:    DefaultPoints,
	}
}

var registry = map[string]func() *Problem{
	"harmonic":        func() *Problem { return NewHarmonic(1).Problem() },
	"pendulum":        func() *Problem { return NewPendulum(1).Problem() },
	"damped":          func() *Problem { return NewDamped(1, 1).Problem() },
	"damped_pendulum": func() *Problem { return NewDampedPendulum(1, 1).Problem() },
}

// Lookup returns a fresh copy of the named problem.
func Lookup(name string) (*Problem, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

// Names lists the registered problems in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// coeff prefixes term with c, leaving unit coefficients implicit.
func coeff(c float64, term string) string {
	if c == 1 {
		return term
	}
	return strconv.FormatFloat(c, 'g', -1, 64) + term
}
