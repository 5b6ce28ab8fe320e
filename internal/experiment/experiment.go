package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rklab/internal/dynamo"
	"github.com/san-kum/rklab/internal/integrators"
	"github.com/san-kum/rklab/internal/metrics"
	"github.com/san-kum/rklab/internal/problems"
	"github.com/san-kum/rklab/internal/reference"
)

const (
	BaselineExact     = "exact"
	BaselineReference = "reference"
)

type Config struct {
	Problem string
	Methods []string
	T0      float64
	Tf      float64
	// Points is the number of grid points. Zero means no grid: a single
	// step from T0 to Tf.
	Points    int
	InitState []float64
	Substeps  int
}

// DefaultConfig returns the course setup for a problem: its own interval,
// grid and initial state, compared with every method.
func DefaultConfig(p *problems.Problem) Config {
	return Config{
		Problem:   p.Name,
		Methods:   DefaultMethods(),
		T0:        p.T0,
		Tf:        p.Tf,
		Points:    p.Points,
		InitState: p.InitState.Clone(),
		Substeps:  reference.DefaultSubsteps,
	}
}

type Series struct {
	Method     *Method
	Trajectory *dynamo.Trajectory
	Errors     metrics.Summary
	// IsBaseline marks the series the others are measured against. Its
	// error summary is NaN rather than a trivial zero.
	IsBaseline bool
	// EnergyDrift is NaN for problems without a conserved energy.
	EnergyDrift float64
	Elapsed     time.Duration
}

type Result struct {
	Problem      *problems.Problem
	Times        []float64
	Baseline     []float64
	BaselineKind string
	Series       []Series
}

type Experiment struct {
	cfg      Config
	registry *Registry
	logger   *slog.Logger
}

func New(cfg Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets where progress is reported.
func (e *Experiment) WithLogger(l *slog.Logger) *Experiment {
	e.logger = l
	return e
}

func (e *Experiment) Config() Config {
	return e.cfg
}

// Run integrates the problem with every configured method in parallel and
// measures each against the baseline.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	p, err := e.registry.GetProblem(e.cfg.Problem)
	if err != nil {
		return nil, err
	}
	if len(e.cfg.Methods) == 0 {
		return nil, fmt.Errorf("no methods selected")
	}

	methods := make([]*Method, len(e.cfg.Methods))
	for i, name := range e.cfg.Methods {
		if methods[i], err = e.registry.GetMethod(name); err != nil {
			return nil, err
		}
	}

	span := dynamo.Span{T0: e.cfg.T0, Tf: e.cfg.Tf}
	y0 := dynamo.State(e.cfg.InitState)
	if y0 == nil {
		y0 = p.InitState
	}
	if len(y0) != len(p.InitState) {
		return nil, fmt.Errorf("%w: %s expects %d state components, got %d",
			dynamo.ErrDimensionMismatch, p.Name, len(p.InitState), len(y0))
	}

	grid, err := e.grid(span)
	if err != nil {
		return nil, err
	}

	times := grid
	if times == nil {
		times = []float64{span.T0, span.Tf}
	}

	// the closed form only holds for the problem's own initial condition
	if p.HasExact() && (span.T0 != p.T0 || !slices.Equal(y0, p.InitState)) {
		e.logger.Debug("initial condition changed, using reference baseline", "problem", p.Name)
		p.Exact = nil
	}

	result := &Result{
		Problem: p,
		Times:   times,
		Series:  make([]Series, len(methods)),
	}

	if p.HasExact() {
		result.Baseline = p.ExactOn(times)
		result.BaselineKind = BaselineExact
	} else {
		ref, err := reference.Solve(p.RHS, span, y0, grid, e.cfg.Substeps)
		if err != nil {
			return nil, fmt.Errorf("reference solution: %w", err)
		}
		result.Baseline = ref.Row(0)
		result.BaselineKind = BaselineReference
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range methods {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			traj, err := integrators.Integrate(m.New(e.cfg.Substeps), p.RHS, span, y0, grid)
			if err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}

			s := Series{
				Method:      m,
				Trajectory:  traj,
				Errors:      metrics.Compare(traj.Row(0), result.Baseline),
				EnergyDrift: energyDrift(p, traj),
				Elapsed:     time.Since(start),
			}
			if result.BaselineKind == BaselineReference && m.Name == referenceMethod {
				s.IsBaseline = true
				s.Errors = metrics.Summary{MaxAbs: math.NaN(), Final: math.NaN(), RMS: math.NaN()}
			}
			result.Series[i] = s

			e.logger.Debug("method finished",
				"method", m.Name,
				"points", len(times),
				"max_err", s.Errors.MaxAbs,
				"elapsed", s.Elapsed,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (e *Experiment) grid(span dynamo.Span) ([]float64, error) {
	switch {
	case e.cfg.Points < 0:
		return nil, fmt.Errorf("%w: negative point count %d", dynamo.ErrInvalidGrid, e.cfg.Points)
	case e.cfg.Points == 0:
		return nil, nil
	case e.cfg.Points == 1:
		return []float64{span.T0}, nil
	default:
		return integrators.Linspace(span.T0, span.Tf, e.cfg.Points), nil
	}
}

func energyDrift(p *problems.Problem, traj *dynamo.Trajectory) float64 {
	if p.Energy == nil {
		return math.NaN()
	}
	states := traj.States()
	energies := make([]float64, len(states))
	for i, x := range states {
		energies[i] = p.Energy(x)
	}
	return metrics.Drift(energies)
}

// Get returns the series produced by the named method, if it was run.
func (r *Result) Get(method string) (*Series, bool) {
	for i := range r.Series {
		if r.Series[i].Method.Name == method {
			return &r.Series[i], true
		}
	}
	return nil, false
}
