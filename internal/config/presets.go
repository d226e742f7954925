package config

import (
	"math"
	"sort"
)

func round4(x float64) float64 { return math.Round(x*1e4) / 1e4 }

// linspace returns n evenly spaced values from a to b inclusive.
func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return out
}

func polymer(name string, mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	mutate(cfg)
	return cfg
}

func walk(name string, mutate func(*WalkConfig)) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	mutate(&cfg.Walk)
	return cfg
}

func flocking(name string, mutate func(*FlockConfig)) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	mutate(&cfg.Flock)
	return cfg
}

var Presets = map[string]map[string]*Config{
	"polymer": {
		// fresh chain per N
		"vary-n": polymer("vary-n", func(c *Config) {
			c.Run.Snapshots = true
			c.Sweep = SweepConfig{Parameter: SweepN, Values: []float64{25, 20, 5}}
		}),
		// one chain carried through every epsilon stage
		"vary-epsilon": polymer("vary-epsilon", func(c *Config) {
			c.Run.Snapshots = true
			c.Sweep = SweepConfig{Parameter: SweepEpsilon, Values: []float64{1, 0.5, 0}, CarryState: true}
		}),
		"quick": polymer("quick", func(c *Config) {
			c.Run.Steps = 5000
			c.Run.PrintInterval = 500
		}),
		"cold": polymer("cold", func(c *Config) {
			c.ForceField.Temperature = 0
			c.Run.Steps = 20000
		}),
	},
	"walk": {
		"part-1": walk("part-1", func(w *WalkConfig) {
			w.Thetas = []float64{round4(math.Pi / 24), round4(math.Pi / 12), round4(math.Pi / 3)}
			w.Weights = []float64{0, 0.5, 1}
		}),
		"realizations": walk("realizations", func(w *WalkConfig) {
			w.ThetaCRW = round4(math.Pi / 3)
			w.ThetaBRW = round4(math.Pi / 3)
			w.Weight = 0
			w.RealizationCounts = []int{50, 100, 500, 1000, 5000}
		}),
		"part-2": walk("part-2", func(w *WalkConfig) {
			w.Realizations = 500
			w.ThetaCRW = round4(math.Pi / 30)
			w.ThetaBRW = round4(math.Pi / 3)
			w.Weights = linspace(0, 1, 500)
		}),
	},
	"flock": {
		"boids": flocking("boids", func(f *FlockConfig) {}),
		"repellants": flocking("repellants", func(f *FlockConfig) {
			f.Repellants = 10
			f.Repulsion = 50
		}),
		// order parameter against noise strength
		"noise-scan": flocking("noise-scan", func(f *FlockConfig) {
			f.Steps = 500
			f.Realizations = 5
			f.Noises = linspace(0, 1, 6)
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(group, name string) *Config {
	presets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(group string) []string {
	presets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Clone deep-copies the config, slices included.
func (c *Config) Clone() *Config {
	out := *c
	out.Sweep.Values = append([]float64(nil), c.Sweep.Values...)
	out.Walk.Thetas = append([]float64(nil), c.Walk.Thetas...)
	out.Walk.Weights = append([]float64(nil), c.Walk.Weights...)
	out.Walk.RealizationCounts = append([]int(nil), c.Walk.RealizationCounts...)
	out.Flock.Noises = append([]float64(nil), c.Flock.Noises...)
	return &out
}
