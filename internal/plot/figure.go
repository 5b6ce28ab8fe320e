package plot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/rklab/internal/experiment"
	"github.com/san-kum/rklab/internal/integrators"
)

const DefaultExactSamples = 200

// Options controls the size and the sampling of a figure. Width and Height
// are in inches.
type Options struct {
	Width        float64
	Height       float64
	ExactSamples int
	// YLim overrides the problem's own limits when set.
	YLim *[2]float64
}

func DefaultOptions() Options {
	return Options{
		Width:        8,
		Height:       6,
		ExactSamples: DefaultExactSamples,
	}
}

// Markers is one method's values on its grid.
type Markers struct {
	Label  string
	Style  string
	Times  []float64
	Values []float64
}

// Figure is a solution chart ready to be written out.
type Figure struct {
	Title  string
	T0, Tf float64
	// Exact is drawn as a line when non-nil.
	Exact  func(t float64) float64
	YLim   *[2]float64
	Series []Markers

	opts Options
}

// FromResult builds the figure of a comparison run. The exact curve is only
// drawn when the run was measured against it.
func FromResult(r *experiment.Result, opts Options) (*Figure, error) {
	if len(r.Times) == 0 {
		return nil, fmt.Errorf("empty result")
	}

	fig := &Figure{
		Title: r.Problem.Title,
		T0:    r.Times[0],
		Tf:    r.Times[len(r.Times)-1],
		YLim:  r.Problem.YLim,
		opts:  opts,
	}
	if r.BaselineKind == experiment.BaselineExact {
		fig.Exact = r.Problem.Exact
	}
	if opts.YLim != nil {
		fig.YLim = opts.YLim
	}

	for _, s := range r.Series {
		fig.Series = append(fig.Series, Markers{
			Label:  s.Method.Label,
			Style:  s.Method.Style,
			Times:  s.Trajectory.Times,
			Values: s.Trajectory.Row(0),
		})
	}
	return fig, nil
}

// WithOptions replaces the size and sampling options.
func (f *Figure) WithOptions(opts Options) *Figure {
	f.opts = opts
	if opts.YLim != nil {
		f.YLim = opts.YLim
	}
	return f
}

func (f *Figure) build() (*gplot.Plot, error) {
	p := gplot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = "t"
	p.Y.Label.Text = "y(t)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if f.Exact != nil {
		samples := f.opts.ExactSamples
		if samples < 2 {
			samples = DefaultExactSamples
		}
		ts := integrators.Linspace(f.T0, f.Tf, samples)
		ys := make([]float64, len(ts))
		for i, t := range ts {
			ys[i] = f.Exact(t)
		}

		line, err := plotter.NewLine(finiteXYs(ts, ys))
		if err != nil {
			return nil, fmt.Errorf("exact curve: %w", err)
		}
		line.Color = color.Black
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("EXACT", line)
	}

	for _, s := range f.Series {
		pts := finiteXYs(s.Times, s.Values)
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Label, err)
		}
		sc.GlyphStyle = glyphStyle(s.Style)
		p.Add(sc)
		p.Legend.Add(s.Label, sc)
	}

	p.X.Min, p.X.Max = f.T0, f.Tf
	if f.YLim != nil {
		p.Y.Min, p.Y.Max = f.YLim[0], f.YLim[1]
	}
	return p, nil
}

// Render writes the figure in the given format ("png", "svg", "pdf", ...).
func (f *Figure) Render(w io.Writer, format string) error {
	p, err := f.build()
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(f.width(), f.height(), strings.ToLower(format))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes the figure to path, creating the directory if needed.
func (f *Figure) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	p, err := f.build()
	if err != nil {
		return err
	}
	return p.Save(f.width(), f.height(), path)
}

func (f *Figure) width() vg.Length {
	if f.opts.Width <= 0 {
		return 8 * vg.Inch
	}
	return vg.Length(f.opts.Width) * vg.Inch
}

func (f *Figure) height() vg.Length {
	if f.opts.Height <= 0 {
		return 6 * vg.Inch
	}
	return vg.Length(f.opts.Height) * vg.Inch
}

// finiteXYs pairs times with values, skipping points gonum cannot draw.
func finiteXYs(ts, ys []float64) plotter.XYs {
	n := min(len(ts), len(ys))
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: ts[i], Y: ys[i]})
	}
	return pts
}
