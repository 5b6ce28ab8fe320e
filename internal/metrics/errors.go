package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Summary describes how far an approximation is from a baseline over a grid.
type Summary struct {
	MaxAbs float64 `json:"max_abs"`
	Final  float64 `json:"final"`
	RMS    float64 `json:"rms"`
}

// Compare measures approx against baseline point by point. Both slices must
// have the same non-zero length. NaN anywhere makes every field NaN.
func Compare(approx, baseline []float64) Summary {
	if len(approx) == 0 || len(approx) != len(baseline) {
		return Summary{MaxAbs: math.NaN(), Final: math.NaN(), RMS: math.NaN()}
	}
	if floats.HasNaN(approx) || floats.HasNaN(baseline) {
		return Summary{MaxAbs: math.NaN(), Final: math.NaN(), RMS: math.NaN()}
	}

	last := len(approx) - 1
	return Summary{
		MaxAbs: floats.Distance(approx, baseline, math.Inf(1)),
		Final:  math.Abs(approx[last] - baseline[last]),
		RMS:    floats.Distance(approx, baseline, 2) / math.Sqrt(float64(len(approx))),
	}
}

// Drift is the largest relative change of an invariant along a series, as
// used to watch energy conservation on the pendulum.
func Drift(values []float64) float64 {
	if len(values) == 0 || values[0] == 0 {
		return 0
	}
	maxDrift := 0.0
	for _, v := range values {
		maxDrift = math.Max(maxDrift, math.Abs(v-values[0])/math.Abs(values[0]))
	}
	return maxDrift
}
