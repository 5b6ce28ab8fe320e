package viz

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/rklab/internal/analysis"
	"github.com/san-kum/rklab/internal/experiment"
)

const sparkWidth = 16

// ResultsTable summarizes every method of a comparison run.
func ResultsTable(r *experiment.Result) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "METHOD\tLABEL\tY(TF)\tFINAL ERR\tMAX ERR\tRMS ERR\tENERGY DRIFT\tTIME")
	for _, s := range r.Series {
		final := s.Trajectory.Final()
		name := s.Method.Name
		if s.IsBaseline {
			name += " (baseline)"
		}
		fmt.Fprintf(w, "%s\t%s\t%.6f\t%s\t%s\t%s\t%s\t%v\n",
			name,
			s.Method.Label,
			final[0],
			formatErr(s.Errors.Final),
			formatErr(s.Errors.MaxAbs),
			formatErr(s.Errors.RMS),
			formatErr(s.EnergyDrift),
			s.Elapsed,
		)
	}
	w.Flush()

	var out strings.Builder
	out.WriteString(styleHeader(buf.String()))
	out.WriteString("\n")
	out.WriteString(Subtle.Render(fmt.Sprintf("baseline: %s", r.BaselineKind)))
	out.WriteString("\n")

	for _, s := range r.Series {
		row := s.Trajectory.Row(0)
		errs := make([]float64, len(row))
		for i := range row {
			errs[i] = math.Abs(row[i] - r.Baseline[i])
		}
		out.WriteString(fmt.Sprintf("%-10s %s\n", MetricLabel.Render(s.Method.Label), SparklineChart(errs, sparkWidth)))
	}

	return out.String()
}

// ConvergenceTable shows one row per refinement level.
func ConvergenceTable(levels []analysis.Level) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "POINTS\tH\tMAX ERR\tRATIO\tORDER")
	for _, l := range levels {
		fmt.Fprintf(w, "%d\t%.6g\t%s\t%s\t%s\n",
			l.Points, l.H, formatErr(l.MaxErr), formatNum(l.Ratio), formatNum(l.Order))
	}
	w.Flush()

	return styleHeader(buf.String())
}

// ResultsChart plots the baseline and the first component of every series.
func ResultsChart(r *experiment.Result, width, height int) string {
	lines := make([]Line, 0, len(r.Series)+1)
	lines = append(lines, Line{Label: r.BaselineKind, Values: r.Baseline})
	for _, s := range r.Series {
		lines = append(lines, Line{Label: s.Method.Label, Values: s.Trajectory.Row(0)})
	}
	return Chart(r.Problem.Title, lines, width, height)
}

func styleHeader(table string) string {
	header, rest, _ := strings.Cut(table, "\n")
	return HeaderStyle.Render(header) + "\n" + rest
}

func formatErr(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3e", v)
}

func formatNum(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}
