package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// Line is one labeled curve of a terminal chart.
type Line struct {
	Label  string
	Values []float64
}

var palette = []asciigraph.AnsiColor{
	asciigraph.Default,
	asciigraph.Red,
	asciigraph.Blue,
	asciigraph.Green,
	asciigraph.Yellow,
}

// Chart plots all lines on shared axes. Non-finite samples are left out;
// a line with no finite sample is dropped entirely. It returns "" when
// nothing is left to draw.
func Chart(caption string, lines []Line, width, height int) string {
	data := make([][]float64, 0, len(lines))
	legends := make([]string, 0, len(lines))
	colors := make([]asciigraph.AnsiColor, 0, len(lines))

	for i, l := range lines {
		clean, ok := finite(l.Values)
		if !ok {
			continue
		}
		data = append(data, clean)
		legends = append(legends, l.Label)
		colors = append(colors, palette[i%len(palette)])
	}

	if len(data) == 0 {
		return ""
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Precision(3),
	)
}

// finite replaces Inf with NaN, which asciigraph skips, and reports whether
// any sample is usable.
func finite(values []float64) ([]float64, bool) {
	out := make([]float64, len(values))
	usable := false
	for i, v := range values {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		if !math.IsNaN(v) {
			usable = true
		}
		out[i] = v
	}
	// a single sample cannot be interpolated across the width
	if len(out) == 1 {
		out = append(out, out[0])
	}
	return out, usable
}
