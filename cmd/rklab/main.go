package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/rklab/internal/analysis"
	"github.com/san-kum/rklab/internal/automation"
	"github.com/san-kum/rklab/internal/config"
	"github.com/san-kum/rklab/internal/experiment"
	"github.com/san-kum/rklab/internal/metrics"
	"github.com/san-kum/rklab/internal/plot"
	"github.com/san-kum/rklab/internal/problems"
	"github.com/san-kum/rklab/internal/storage"
	"github.com/san-kum/rklab/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	t0         float64
	tf         float64
	points     int
	y0         []float64
	methods    []string
	substeps   int
	output     string
	save       bool
	// convergence study
	method string
	levels int
	// step-size sweep
	sweepMethod string
	minPoints   int
	maxPoints   int
	sweepSteps  int
	// phase plot axes
	xAxis int
	yAxis int
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func main() {
	rootCmd := &cobra.Command{
		Use:   "rklab",
		Short: "fixed-step Runge-Kutta lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rklab", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	solveCmd := &cobra.Command{
		Use:   "solve [problem]",
		Short: "compare methods on a problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  solveProblem,
	}
	solveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	solveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	solveCmd.Flags().Float64Var(&t0, "t0", problems.DefaultT0, "start time")
	solveCmd.Flags().Float64Var(&tf, "tf", problems.DefaultTf, "end time")
	solveCmd.Flags().IntVar(&points, "points", problems.DefaultPoints, "grid points, 0 for a single step")
	solveCmd.Flags().Float64SliceVar(&y0, "y0", nil, "initial state (default: the problem's)")
	solveCmd.Flags().StringSliceVar(&methods, "methods", experiment.DefaultMethods(), "methods to compare")
	solveCmd.Flags().IntVar(&substeps, "substeps", config.DefaultConfig().Substeps, "reference sub-steps per interval")
	solveCmd.Flags().StringVarP(&output, "out", "o", "", "write a chart image (.png, .svg, .pdf)")
	solveCmd.Flags().BoolVar(&save, "save", false, "store the run")

	convergeCmd := &cobra.Command{
		Use:   "converge [problem]",
		Short: "measure the observed order of a method",
		Args:  cobra.ExactArgs(1),
		RunE:  convergenceStudy,
	}
	convergeCmd.Flags().StringVar(&method, "method", "midpoint", "method to study")
	convergeCmd.Flags().IntVar(&points, "points", problems.DefaultPoints, "grid points of the coarsest level")
	convergeCmd.Flags().IntVar(&levels, "levels", 6, "number of refinements")
	convergeCmd.Flags().Float64Var(&tf, "tf", problems.DefaultTf, "end time")
	convergeCmd.Flags().IntVar(&substeps, "substeps", config.DefaultConfig().Substeps, "reference sub-steps per interval")

	sweepCmd := &cobra.Command{
		Use:   "sweep [problem]",
		Short: "sweep grid sizes and report stability",
		Args:  cobra.ExactArgs(1),
		RunE:  stepSweep,
	}
	sweepCmd.Flags().StringVar(&sweepMethod, "method", "euler", "method to sweep")
	sweepCmd.Flags().IntVar(&minPoints, "min-points", 3, "coarsest grid")
	sweepCmd.Flags().IntVar(&maxPoints, "max-points", 1001, "finest grid")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of grid sizes")
	sweepCmd.Flags().Float64Var(&tf, "tf", 0, "end time (default: the problem's)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of comparisons",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&save, "save", false, "store every run")

	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "list problems and methods",
		RunE:  listProblems,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVarP(&output, "out", "o", "", "write a chart image instead of drawing in the terminal")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x", 0, "state index for x axis")
	phaseCmd.Flags().IntVar(&yAxis, "y", 1, "state index for y axis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	rootCmd.AddCommand(solveCmd, convergeCmd, sweepCmd, scenarioCmd, problemsCmd, presetsCmd, listCmd, plotCmd, phaseCmd, exportCSVCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves defaults, preset, config file and flags, in that
// order of precedence from lowest to highest.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Problem = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Problem, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Problem))
		}
		cfg = p
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 && fileCfg.Problem != args[0] {
			return nil, fmt.Errorf("config is for %s, not %s", fileCfg.Problem, args[0])
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("tf") {
		cfg.Tf = tf
	}
	if flags.Changed("points") {
		cfg.Points = points
	}
	if flags.Changed("y0") {
		cfg.InitState = y0
	}
	if flags.Changed("methods") {
		cfg.Methods = methods
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("out") {
		cfg.Plot.Output = output
	}

	return cfg, cfg.Validate()
}

func solveProblem(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg.Experiment(), nil).WithLogger(logger)
	logger.Debug("solving", "problem", cfg.Problem, "methods", cfg.Methods, "points", cfg.Points)

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(viz.TitleStyle.Render(result.Problem.Title))
	fmt.Println()
	fmt.Println(viz.ResultsChart(result, 70, 12))
	fmt.Println()
	fmt.Println(viz.ResultsTable(result))

	if cfg.Plot.Output != "" {
		fig, err := plot.FromResult(result, plot.Options{
			Width:        cfg.Plot.Width,
			Height:       cfg.Plot.Height,
			ExactSamples: plot.DefaultExactSamples,
		})
		if err != nil {
			return err
		}
		if err := fig.Save(cfg.Plot.Output); err != nil {
			return fmt.Errorf("save chart: %w", err)
		}
		fmt.Printf("chart: %s\n", cfg.Plot.Output)
	}

	if save {
		runID, err := saveResult(result, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	return nil
}

func saveResult(result *experiment.Result, cfg *config.Config) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}

	meta := storage.RunMetadata{
		Problem:   result.Problem.Name,
		T0:        cfg.T0,
		Tf:        cfg.Tf,
		InitState: cfg.InitState,
		Baseline:  result.BaselineKind,
		Errors:    make(map[string]metrics.Summary, len(result.Series)),
	}
	if meta.InitState == nil {
		meta.InitState = result.Problem.InitState
	}

	series := make([]storage.Series, len(result.Series))
	for i, s := range result.Series {
		series[i] = storage.Series{Method: s.Method.Name, Trajectory: s.Trajectory}
		meta.Errors[s.Method.Name] = s.Errors
	}

	runID, err := st.Save(meta, series)
	if err != nil {
		return "", err
	}
	logger.Debug("run saved", "id", runID, "dir", dataDir)
	return runID, nil
}

func convergenceStudy(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	p, err := registry.GetProblem(args[0])
	if err != nil {
		return err
	}
	m, err := registry.GetMethod(method)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tf") {
		p.Tf = tf
	}

	logger.Debug("convergence study", "problem", p.Name, "method", m.Name, "levels", levels)

	study, err := analysis.Study(m.New(substeps), p, points, levels, substeps)
	if err != nil {
		return err
	}

	fmt.Println(viz.TitleStyle.Render(fmt.Sprintf("%s on %s", m.Label, p.Equation)))
	fmt.Println()
	fmt.Println(viz.ConvergenceTable(study))

	if n := len(study); n > 1 {
		fmt.Printf("%s %s\n",
			viz.MetricLabel.Render("observed order:"),
			viz.MetricValue.Render(strconv.FormatFloat(study[n-1].Order, 'f', 2, 64)))
	}
	return nil
}

func stepSweep(cmd *cobra.Command, args []string) error {
	results, err := automation.RunSweep(context.Background(), &automation.StepSweep{
		Problem:   args[0],
		Method:    sweepMethod,
		Tf:        tf,
		MinPoints: minPoints,
		MaxPoints: maxPoints,
		NumSteps:  sweepSteps,
	}, nil, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POINTS\tH\tY(TF)\tMAX ERR\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.6g\t%.6g\t%.3e\t%v\n", r.Points, r.H, r.Final, r.MaxErr, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.StableCount(results)
	fmt.Printf("\nstable: %d, unstable: %d\n", stable, unstable)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	if scenario.Name != "" {
		fmt.Println(viz.TitleStyle.Render(scenario.Name))
	}
	if scenario.Description != "" {
		fmt.Println(viz.Subtle.Render(scenario.Description))
	}

	results, err := automation.RunScenario(context.Background(), scenario, nil, logger)
	for i, result := range results {
		fmt.Println()
		fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("step %d: %s", i+1, result.Problem.Equation)))
		fmt.Println(viz.ResultsTable(result))

		if path := scenario.Steps[i].SaveAs; path != "" {
			fig, err := plot.FromResult(result, plot.DefaultOptions())
			if err != nil {
				return err
			}
			if err := fig.Save(path); err != nil {
				return fmt.Errorf("save chart: %w", err)
			}
			fmt.Printf("chart: %s\n", path)
		}

		if save {
			cfg := config.DefaultConfig()
			cfg.Problem = result.Problem.Name
			cfg.T0, cfg.Tf = result.Times[0], result.Times[len(result.Times)-1]
			cfg.InitState = scenario.Steps[i].InitState
			runID, err := saveResult(result, cfg)
			if err != nil {
				return err
			}
			fmt.Printf("run id: %s\n", runID)
		}
	}
	return err
}

func listProblems(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROBLEM\tEQUATION\tY0\tEXACT")
	for _, name := range problems.Names() {
		p, err := problems.Lookup(name)
		if err != nil {
			return err
		}
		exact := "no"
		if p.HasExact() {
			exact = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", p.Name, p.Equation, []float64(p.InitState), exact)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tLABEL\tSTYLE")
	for _, name := range registry.ListMethods() {
		m, err := registry.GetMethod(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, m.Label, m.Style)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := problems.Names()
	if len(args) > 0 {
		names = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROBLEM\tPRESET\tT0\tTF\tPOINTS\tY0")
	for _, problem := range names {
		presets := config.ListPresets(problem)
		if len(presets) == 0 {
			return fmt.Errorf("no presets for %s (available: %v)", problem, problems.Names())
		}
		for _, name := range presets {
			cfg := config.GetPreset(problem, name)
			y := "default"
			if len(cfg.InitState) > 0 {
				y = fmt.Sprint(cfg.InitState)
			}
			fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%d\t%s\n", problem, name, cfg.T0, cfg.Tf, cfg.Points, y)
		}
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tSPAN\tPOINTS\tBASELINE\tMETHODS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\t%d\t%s\t%s\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.T0,
			run.Tf,
			run.Points,
			run.Baseline,
			strings.Join(run.Methods, ","),
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []storage.Series, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, series, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if output != "" {
		fig, err := plot.FromRun(meta, series, plot.DefaultOptions())
		if err != nil {
			return err
		}
		if err := fig.Save(output); err != nil {
			return fmt.Errorf("save chart: %w", err)
		}
		fmt.Printf("chart: %s\n", output)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s\n", meta.Problem)
	fmt.Printf("samples: %d\n\n", meta.Points)

	lines := make([]viz.Line, len(series))
	for i, sr := range series {
		lines[i] = viz.Line{Label: sr.Method, Values: sr.Trajectory.Row(0)}
	}
	fmt.Println(viz.Chart(meta.Problem, lines, 80, 12))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("x-axis: x%d, y-axis: x%d\n\n", xAxis, yAxis)

	for _, sr := range series {
		portrait := analysis.NewPhasePortrait(sr.Trajectory, xAxis, yAxis)
		if portrait == nil {
			return fmt.Errorf("state dimension too small for selected axes")
		}
		fmt.Println(viz.BoxWithTitle(sr.Method, analysis.PhasePortraitToASCII(portrait, 60, 20), 62))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, series, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, series)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, series)
}
