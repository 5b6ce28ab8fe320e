package dynamo

import (
	"gonum.org/v1/gonum/mat"
)

// Trajectory holds the approximated states on a time grid. States are stored
// as an n×points matrix: row i is component i, column j is the state at
// Times[j].
type Trajectory struct {
	Times  []float64
	states *mat.Dense
}

// NewTrajectory allocates a zeroed trajectory of dimension n over times.
// Both n and len(times) must be positive.
func NewTrajectory(n int, times []float64) *Trajectory {
	ts := make([]float64, len(times))
	copy(ts, times)
	return &Trajectory{
		Times:  ts,
		states: mat.NewDense(n, len(ts), nil),
	}
}

// Dims returns the state dimension and the number of grid points.
func (tr *Trajectory) Dims() (n, points int) {
	return tr.states.Dims()
}

func (tr *Trajectory) At(i, j int) float64 {
	return tr.states.At(i, j)
}

// SetCol stores the state for grid point j.
func (tr *Trajectory) SetCol(j int, x State) {
	tr.states.SetCol(j, x)
}

// Col returns a copy of the state at grid point j.
func (tr *Trajectory) Col(j int) State {
	return mat.Col(nil, j, tr.states)
}

// Row returns a copy of component i over the whole grid.
func (tr *Trajectory) Row(i int) []float64 {
	return mat.Row(nil, i, tr.states)
}

// Final returns a copy of the last state.
func (tr *Trajectory) Final() State {
	_, c := tr.states.Dims()
	return tr.Col(c - 1)
}

// Matrix exposes the states read-only.
func (tr *Trajectory) Matrix() mat.Matrix {
	return tr.states
}

// States returns the trajectory as one state per grid point.
func (tr *Trajectory) States() []State {
	_, c := tr.states.Dims()
	out := make([]State, c)
	for j := range out {
		out[j] = tr.Col(j)
	}
	return out
}

// FromStates builds a trajectory from per-point states, as read back from
// storage. All states must share the same non-zero length.
func FromStates(times []float64, states []State) (*Trajectory, error) {
	if len(states) == 0 || len(states) != len(times) {
		return nil, ErrInvalidGrid
	}
	n := len(states[0])
	if n == 0 {
		return nil, ErrDimensionMismatch
	}
	tr := NewTrajectory(n, times)
	for j, x := range states {
		if len(x) != n {
			return nil, &StepError{Step: j, Time: times[j], Wrapped: ErrDimensionMismatch}
		}
		tr.SetCol(j, x)
	}
	return tr, nil
}
