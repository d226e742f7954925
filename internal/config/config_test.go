package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/polymd/internal/md"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Run.N != 25 {
		t.Errorf("expected n 25, got %d", cfg.Run.N)
	}
	if cfg.Run.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if err := cfg.ValidateWalk(); err != nil {
		t.Errorf("default walk config should validate: %v", err)
	}
}

func TestParams(t *testing.T) {
	cfg := DefaultConfig()
	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if p != md.DefaultParams() {
		t.Errorf("expected default params, got %+v", p)
	}

	cfg.ForceField.Guard = "error"
	p, err = cfg.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if p.Guard != md.GuardError {
		t.Errorf("expected error guard, got %v", p.Guard)
	}

	cfg.ForceField.Guard = "bogus"
	if _, err := cfg.Params(); !errors.Is(err, md.ErrInvalidParams) {
		t.Errorf("expected invalid params, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"default", func(c *Config) {}, true},
		{"negative cutoff", func(c *Config) { c.ForceField.CutoffLJ = -1 }, false},
		{"negative spring", func(c *Config) { c.ForceField.SpringCoeff = -1 }, false},
		{"single particle", func(c *Config) { c.Run.N = 1 }, false},
		{"zero steps", func(c *Config) { c.Run.Steps = 0 }, false},
		{"sweep n", func(c *Config) { c.Sweep = SweepConfig{Parameter: SweepN, Values: []float64{25, 5}} }, true},
		{"sweep n fractional", func(c *Config) { c.Sweep = SweepConfig{Parameter: SweepN, Values: []float64{2.5}} }, false},
		{"sweep n too small", func(c *Config) { c.Sweep = SweepConfig{Parameter: SweepN, Values: []float64{1}} }, false},
		{"sweep epsilon negative", func(c *Config) { c.Sweep = SweepConfig{Parameter: SweepEpsilon, Values: []float64{-1}} }, false},
		{"sweep unknown", func(c *Config) { c.Sweep = SweepConfig{Parameter: "dt", Values: []float64{1}} }, false},
		{"sweep empty", func(c *Config) { c.Sweep = SweepConfig{Parameter: SweepEpsilon} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, want valid=%v", err, tt.valid)
			}
			if err != nil && !errors.Is(err, md.ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams in chain, got %v", err)
			}
		})
	}
}

func TestValidateWalk(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Walk.Weight = 1.5
	cfg.Walk.Steps = 1
	if err := cfg.ValidateWalk(); err == nil {
		t.Error("expected walk validation error")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("name: custom\nforce_field:\n  epsilon_lj: 0.5\nrun:\n  n: 12\n  steps: 100\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "custom" || cfg.Run.N != 12 || cfg.Run.Steps != 100 {
		t.Errorf("unexpected config %+v", cfg.Run)
	}
	if cfg.ForceField.EpsilonLJ != 0.5 {
		t.Errorf("expected epsilon 0.5, got %f", cfg.ForceField.EpsilonLJ)
	}
	// untouched keys keep their defaults
	if cfg.ForceField.CutoffLJ != md.DefaultCutoffLJ {
		t.Errorf("expected default cutoff, got %f", cfg.ForceField.CutoffLJ)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	data := []byte("name = \"swept\"\n[sweep]\nparameter = \"epsilon\"\nvalues = [1.0, 0.0]\ncarry_state = true\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sweep.Parameter != SweepEpsilon || len(cfg.Sweep.Values) != 2 || !cfg.Sweep.CarryState {
		t.Errorf("unexpected sweep %+v", cfg.Sweep)
	}
	if cfg.Run.Steps != DefaultSteps {
		t.Errorf("expected default steps, got %d", cfg.Run.Steps)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		path := filepath.Join(t.TempDir(), "cfg"+ext)
		cfg := GetPreset("polymer", "vary-epsilon")
		if err := Save(path, cfg); err != nil {
			t.Fatalf("%s save: %v", ext, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("%s load: %v", ext, err)
		}
		if got.Name != cfg.Name || got.Sweep.Parameter != cfg.Sweep.Parameter || len(got.Sweep.Values) != 3 {
			t.Errorf("%s: round trip mismatch: %+v", ext, got.Sweep)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("polymer", "vary-n")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Sweep.Parameter != SweepN || cfg.Sweep.CarryState {
		t.Errorf("vary-n must sweep n with fresh state, got %+v", cfg.Sweep)
	}

	eps := GetPreset("polymer", "vary-epsilon")
	if !eps.Sweep.CarryState {
		t.Error("vary-epsilon must carry state between stages")
	}

	// presets are copies
	cfg.Sweep.Values[0] = 99
	if Presets["polymer"]["vary-n"].Sweep.Values[0] == 99 {
		t.Error("GetPreset returned shared slice")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("polymer", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "quick") != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestListPresets(t *testing.T) {
	if len(ListPresets("walk")) != 3 {
		t.Errorf("expected 3 walk presets, got %v", ListPresets("walk"))
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent group")
	}
	if len(ListGroups()) != 3 {
		t.Errorf("expected 3 groups, got %v", ListGroups())
	}
}

func TestWalkPresets(t *testing.T) {
	part2 := GetPreset("walk", "part-2")
	if len(part2.Walk.Weights) != 500 {
		t.Fatalf("expected 500 weights, got %d", len(part2.Walk.Weights))
	}
	if part2.Walk.Weights[0] != 0 || part2.Walk.Weights[499] != 1 {
		t.Errorf("weights should span [0, 1]")
	}
	if part2.Walk.ThetaCRW != 0.1047 {
		t.Errorf("expected rounded pi/30, got %f", part2.Walk.ThetaCRW)
	}
	if err := part2.ValidateWalk(); err != nil {
		t.Errorf("part-2 preset invalid: %v", err)
	}
}

func TestFlockPresets(t *testing.T) {
	for _, name := range ListPresets("flock") {
		cfg := GetPreset("flock", name)
		if _, err := cfg.FlockParams(); err != nil {
			t.Errorf("flock preset %s invalid: %v", name, err)
		}
	}

	scan := GetPreset("flock", "noise-scan")
	if len(scan.Flock.Noises) != 6 || scan.Flock.Noises[5] != 1 {
		t.Errorf("unexpected noise values %v", scan.Flock.Noises)
	}
	scan.Flock.Noises[0] = 42
	if GetPreset("flock", "noise-scan").Flock.Noises[0] != 0 {
		t.Error("preset noises shared between copies")
	}
}

func TestFlockParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Flock.CenterX = 5
	cfg.Flock.Repellants = 2
	p, err := cfg.FlockParams()
	if err != nil {
		t.Fatalf("default flock config should validate: %v", err)
	}
	if p.Box.Center.X != 5 || p.Repellants != 2 || p.N != cfg.Flock.N {
		t.Errorf("unexpected params %+v", p)
	}

	cfg.Flock.Steps = 0
	cfg.Flock.Noises = []float64{-1}
	if _, err := cfg.FlockParams(); !errors.Is(err, md.ErrInvalidParams) {
		t.Errorf("expected invalid params, got %v", err)
	}
}
