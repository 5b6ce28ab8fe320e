package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rklab/internal/experiment"
	"github.com/san-kum/rklab/internal/problems"
	"github.com/san-kum/rklab/internal/reference"
)

const (
	DefaultProblem    = "harmonic"
	DefaultPlotWidth  = 8.0
	DefaultPlotHeight = 6.0
)

type Config struct {
	Problem   string     `yaml:"problem"`
	Methods   []string   `yaml:"methods"`
	T0        float64    `yaml:"t0"`
	Tf        float64    `yaml:"tf"`
	Points    int        `yaml:"points"`
	InitState []float64  `yaml:"init_state,omitempty"`
	Substeps  int        `yaml:"substeps"`
	Plot      PlotConfig `yaml:"plot"`
}

type PlotConfig struct {
	// Output is an image path; the extension picks the format
	// (.png, .svg, .pdf). Empty disables image output.
	Output string  `yaml:"output"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem:  DefaultProblem,
		Methods:  experiment.DefaultMethods(),
		T0:       problems.DefaultT0,
		Tf:       problems.DefaultTf,
		Points:   problems.DefaultPoints,
		Substeps: reference.DefaultSubsteps,
		Plot: PlotConfig{
			Width:  DefaultPlotWidth,
			Height: DefaultPlotHeight,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks what can be checked without running anything; grid and
// span consistency is left to the integrator.
func (c *Config) Validate() error {
	if _, err := problems.Lookup(c.Problem); err != nil {
		return err
	}
	if len(c.Methods) == 0 {
		return fmt.Errorf("no methods configured")
	}
	registry := experiment.NewRegistry()
	for _, m := range c.Methods {
		if _, err := registry.GetMethod(m); err != nil {
			return err
		}
	}
	if c.Points < 0 {
		return fmt.Errorf("points must not be negative, got %d", c.Points)
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("plot size must be positive, got %gx%g", c.Plot.Width, c.Plot.Height)
	}
	return nil
}

// Experiment converts the file layout into a harness configuration. A
// missing initial state means the problem's own.
func (c *Config) Experiment() experiment.Config {
	var y0 []float64
	if len(c.InitState) > 0 {
		y0 = append([]float64(nil), c.InitState...)
	}
	return experiment.Config{
		Problem:   c.Problem,
		Methods:   append([]string(nil), c.Methods...),
		T0:        c.T0,
		Tf:        c.Tf,
		Points:    c.Points,
		InitState: y0,
		Substeps:  c.Substeps,
	}
}
