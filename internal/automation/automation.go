package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rklab/internal/experiment"
	"github.com/san-kum/rklab/internal/integrators"
)

// Scenario is a scripted sequence of comparison runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one comparison run. Zero fields take the problem's
// defaults.
type ScenarioStep struct {
	Problem   string    `yaml:"problem"`
	Methods   []string  `yaml:"methods"`
	T0        *float64  `yaml:"t0"`
	Tf        *float64  `yaml:"tf"`
	Points    *int      `yaml:"points"`
	InitState []float64 `yaml:"init_state"`
	Substeps  int       `yaml:"substeps"`
	// SaveAs is a chart image path for this step.
	SaveAs string `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}

	return &scenario, nil
}

// Config resolves the step against the problem's defaults.
func (s ScenarioStep) Config(registry *experiment.Registry) (experiment.Config, error) {
	p, err := registry.GetProblem(s.Problem)
	if err != nil {
		return experiment.Config{}, err
	}

	cfg := experiment.DefaultConfig(p)
	if len(s.Methods) > 0 {
		cfg.Methods = s.Methods
	}
	if s.T0 != nil {
		cfg.T0 = *s.T0
	}
	if s.Tf != nil {
		cfg.Tf = *s.Tf
	}
	if s.Points != nil {
		cfg.Points = *s.Points
	}
	if len(s.InitState) > 0 {
		cfg.InitState = s.InitState
	}
	if s.Substeps > 0 {
		cfg.Substeps = s.Substeps
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger) ([]*experiment.Result, error) {
	if registry == nil {
		registry = experiment.NewRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	results := make([]*experiment.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "problem", step.Problem)

		cfg, err := step.Config(registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := experiment.New(cfg, registry).WithLogger(logger).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, result)
	}

	return results, nil
}

// StepSweep integrates a problem with one method over a range of grid
// sizes, from coarse to fine.
type StepSweep struct {
	Problem   string
	Method    string
	// Tf overrides the problem's end time when positive.
	Tf        float64
	MinPoints int
	MaxPoints int
	NumSteps  int
	Substeps  int
}

// SweepResult is the outcome of one grid size.
type SweepResult struct {
	Points int
	H      float64
	Final  float64
	MaxErr float64
	// Stable is false once the solution leaves any reasonable bound.
	Stable bool
}

const stabilityBound = 1e6

// RunSweep executes a step-size sweep. Point counts are spaced
// geometrically between MinPoints and MaxPoints.
func RunSweep(ctx context.Context, sweep *StepSweep, registry *experiment.Registry, logger *slog.Logger) ([]SweepResult, error) {
	if registry == nil {
		registry = experiment.NewRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if sweep.MinPoints < 2 || sweep.MaxPoints < sweep.MinPoints {
		return nil, fmt.Errorf("invalid point range [%d, %d]", sweep.MinPoints, sweep.MaxPoints)
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	p, err := registry.GetProblem(sweep.Problem)
	if err != nil {
		return nil, err
	}

	counts := pointCounts(sweep.MinPoints, sweep.MaxPoints, sweep.NumSteps)
	results := make([]SweepResult, 0, len(counts))

	for i, n := range counts {
		cfg := experiment.DefaultConfig(p)
		cfg.Methods = []string{sweep.Method}
		cfg.Points = n
		if sweep.Tf > 0 {
			cfg.Tf = sweep.Tf
		}
		if sweep.Substeps > 0 {
			cfg.Substeps = sweep.Substeps
		}

		result, err := experiment.New(cfg, registry).Run(ctx)
		if err != nil {
			return nil, err
		}

		s := result.Series[0]
		final := s.Trajectory.Final()
		results = append(results, SweepResult{
			Points: n,
			H:      (cfg.Tf - cfg.T0) / float64(n-1),
			Final:  final[0],
			MaxErr: s.Errors.MaxAbs,
			Stable: bounded(final),
		})

		logger.Debug("sweep", "step", i+1, "of", len(counts), "points", n, "max_err", s.Errors.MaxAbs)
	}

	return results, nil
}

// pointCounts spaces n grid sizes geometrically, dropping duplicates that
// rounding produces on narrow ranges.
func pointCounts(lo, hi, n int) []int {
	if n == 1 || lo == hi {
		return []int{lo}
	}
	exps := integrators.Linspace(math.Log(float64(lo)), math.Log(float64(hi)), n)
	out := make([]int, 0, n)
	for _, e := range exps {
		c := int(math.Round(math.Exp(e)))
		if len(out) > 0 && c <= out[len(out)-1] {
			continue
		}
		out = append(out, c)
	}
	return out
}

func bounded(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.Abs(v) > stabilityBound {
			return false
		}
	}
	return true
}

// StableCount tallies the sweep results that stayed bounded.
func StableCount(results []SweepResult) (stable int, unstable int) {
	for _, r := range results {
		if r.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}
