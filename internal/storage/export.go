package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/rklab/internal/metrics"
)

type ExportData struct {
	ID       string                     `json:"id"`
	Problem  string                     `json:"problem"`
	Baseline string                     `json:"baseline"`
	Times    []float64                  `json:"times"`
	Series   map[string][][]*float64    `json:"series"`
	Errors   map[string]metrics.Summary `json:"errors"`
}

// ExportJSON writes a run as one JSON document. Each series is stored
// component-major, matching the trajectory layout. NaN and Inf samples of
// a diverged method become null.
func ExportJSON(w io.Writer, meta *RunMetadata, series []Series) error {
	data := ExportData{
		ID:       meta.ID,
		Problem:  meta.Problem,
		Baseline: meta.Baseline,
		Series:   make(map[string][][]*float64, len(series)),
		Errors:   finiteErrors(meta.Errors),
	}

	for _, sr := range series {
		if data.Times == nil {
			data.Times = sr.Trajectory.Times
		}
		n, _ := sr.Trajectory.Dims()
		rows := make([][]*float64, n)
		for i := range rows {
			rows[i] = nullable(sr.Trajectory.Row(i))
		}
		data.Series[sr.Method] = rows
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if isFinite(values[i]) {
			out[i] = &values[i]
		}
	}
	return out
}
