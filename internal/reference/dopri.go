// Package reference provides a high-order baseline used to judge the
// low-order methods on problems without a closed-form solution.
package reference

import (
	"github.com/san-kum/rklab/internal/dynamo"
	"github.com/san-kum/rklab/internal/integrators"
)

// Dormand-Prince coefficients (5th-order solution)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0
)

// DefaultSubsteps is the number of sub-steps taken per grid interval.
const DefaultSubsteps = 64

// DormandPrince takes fixed 5th-order Dormand-Prince steps, splitting every
// grid interval into Substeps equal parts. There is no error control: the
// baseline's accuracy is set by Substeps alone.
type DormandPrince struct {
	Substeps int
}

func NewDormandPrince(substeps int) *DormandPrince {
	if substeps < 1 {
		substeps = DefaultSubsteps
	}
	return &DormandPrince{Substeps: substeps}
}

func (d *DormandPrince) Step(f dynamo.RHS, t float64, y dynamo.State, tNext float64) dynamo.State {
	m := max(d.Substeps, 1)
	h := (tNext - t) / float64(m)
	x := y
	for s := 0; s < m; s++ {
		x = d.stage(f, t+float64(s)*h, x, h)
		if x == nil {
			return nil
		}
	}
	return x
}

func (d *DormandPrince) stage(f dynamo.RHS, t float64, x dynamo.State, dt float64) dynamo.State {
	n := len(x)
	k1 := f(t, x)
	if len(k1) != n {
		return nil
	}

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := f(t+a2*dt, x2)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := f(t+a3*dt, x3)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := f(t+a4*dt, x4)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := f(t+a5*dt, x5)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := f(t+dt, x6)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	return xNew
}

// Solve integrates f on tEval with the baseline method.
func Solve(f dynamo.RHS, span dynamo.Span, y0 dynamo.State, tEval []float64, substeps int) (*dynamo.Trajectory, error) {
	return integrators.Integrate(NewDormandPrince(substeps), f, span, y0, tEval)
}
