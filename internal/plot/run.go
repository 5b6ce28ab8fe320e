package plot

import (
	"fmt"

	"github.com/san-kum/rklab/internal/experiment"
	"github.com/san-kum/rklab/internal/problems"
	"github.com/san-kum/rklab/internal/storage"
)

// FromRun rebuilds the figure of a stored run. Methods the registry no
// longer knows keep their stored name and a default marker.
func FromRun(meta *storage.RunMetadata, series []storage.Series, opts Options) (*Figure, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("run %s: no series", meta.ID)
	}
	p, err := problems.Lookup(meta.Problem)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", meta.ID, err)
	}

	times := series[0].Trajectory.Times
	fig := &Figure{
		Title: p.Title,
		T0:    times[0],
		Tf:    times[len(times)-1],
		YLim:  p.YLim,
	}
	if meta.Baseline == experiment.BaselineExact {
		fig.Exact = p.Exact
	}
	fig.WithOptions(opts)

	registry := experiment.NewRegistry()
	for _, sr := range series {
		label, style := sr.Method, ""
		if m, err := registry.GetMethod(sr.Method); err == nil {
			label, style = m.Label, m.Style
		}
		fig.Series = append(fig.Series, Markers{
			Label:  label,
			Style:  style,
			Times:  sr.Trajectory.Times,
			Values: sr.Trajectory.Row(0),
		})
	}
	return fig, nil
}
