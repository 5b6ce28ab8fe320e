package config

import "sort"

var Presets = map[string]map[string]*Config{
	"harmonic": {
		"course": {Problem: "harmonic", T0: 0, Tf: 10, Points: 11},
		"fine":   {Problem: "harmonic", T0: 0, Tf: 10, Points: 101},
		"long":   {Problem: "harmonic", T0: 0, Tf: 50, Points: 501},
	},
	"pendulum": {
		"course": {Problem: "pendulum", T0: 0, Tf: 10, Points: 11},
		"fine":   {Problem: "pendulum", T0: 0, Tf: 10, Points: 101},
		"swing":  {Problem: "pendulum", T0: 0, Tf: 20, Points: 201, InitState: []float64{2.5, 0}},
	},
	"damped": {
		"course": {Problem: "damped", T0: 0, Tf: 10, Points: 11},
		"fine":   {Problem: "damped", T0: 0, Tf: 10, Points: 101},
	},
	"damped_pendulum": {
		"course": {Problem: "damped_pendulum", T0: 0, Tf: 10, Points: 11},
		"fine":   {Problem: "damped_pendulum", T0: 0, Tf: 10, Points: 101},
	},
}

// GetPreset returns a complete configuration for the named preset, or nil
// when either name is unknown.
func GetPreset(problem, name string) *Config {
	byName, ok := Presets[problem]
	if !ok {
		return nil
	}
	p, ok := byName[name]
	if !ok {
		return nil
	}

	cfg := DefaultConfig()
	cfg.Problem = p.Problem
	cfg.T0 = p.T0
	cfg.Tf = p.Tf
	cfg.Points = p.Points
	if len(p.InitState) > 0 {
		cfg.InitState = append([]float64(nil), p.InitState...)
	}
	return cfg
}

func ListPresets(problem string) []string {
	byName, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
