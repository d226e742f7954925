package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/polymd/internal/flock"
	"github.com/san-kum/polymd/internal/md"
)

const (
	DefaultN             = 25
	DefaultSteps         = 200000
	DefaultPrintInterval = 500
	DefaultSeed          = 1

	DefaultWalkSteps        = 500
	DefaultWalkRealizations = 5000
	DefaultWalkVelocity     = 1.0

	DefaultFlockSteps        = 1000
	DefaultFlockRealizations = 1
)

// Sweep parameters.
const (
	SweepN       = "n"
	SweepEpsilon = "epsilon"
)

type Config struct {
	Name       string           `yaml:"name" toml:"name" json:"name"`
	ForceField ForceFieldConfig `yaml:"force_field" toml:"force_field" json:"force_field"`
	Run        RunConfig        `yaml:"run" toml:"run" json:"run"`
	Sweep      SweepConfig      `yaml:"sweep" toml:"sweep" json:"sweep"`
	Walk       WalkConfig       `yaml:"walk" toml:"walk" json:"walk"`
	Flock      FlockConfig      `yaml:"flock" toml:"flock" json:"flock"`
}

type ForceFieldConfig struct {
	EpsilonLJ   float64 `yaml:"epsilon_lj" toml:"epsilon_lj" json:"epsilon_lj"`
	CutoffLJ    float64 `yaml:"cutoff_lj" toml:"cutoff_lj" json:"cutoff_lj"`
	SpringCoeff float64 `yaml:"spring_coeff" toml:"spring_coeff" json:"spring_coeff"`
	MinSep      float64 `yaml:"min_sep" toml:"min_sep" json:"min_sep"`
	Temperature float64 `yaml:"temperature" toml:"temperature" json:"temperature"`
	Guard       string  `yaml:"guard" toml:"guard" json:"guard"` // clamp or error
	MinDistance float64 `yaml:"min_distance" toml:"min_distance" json:"min_distance"`
}

type RunConfig struct {
	N             int     `yaml:"n" toml:"n" json:"n"`
	Steps         int     `yaml:"steps" toml:"steps" json:"steps"`
	Dt            float64 `yaml:"dt" toml:"dt" json:"dt"`
	Seed          int64   `yaml:"seed" toml:"seed" json:"seed"`
	PrintInterval int     `yaml:"print_interval" toml:"print_interval" json:"print_interval"`
	Workers       int     `yaml:"workers" toml:"workers" json:"workers"` // non-bonded pass workers, 1 is serial
	Snapshots     bool    `yaml:"snapshots" toml:"snapshots" json:"snapshots"`
	ValidateState bool    `yaml:"validate_state" toml:"validate_state" json:"validate_state"`
}

type SweepConfig struct {
	Parameter  string    `yaml:"parameter" toml:"parameter" json:"parameter"`
	Values     []float64 `yaml:"values" toml:"values" json:"values"`
	CarryState bool      `yaml:"carry_state" toml:"carry_state" json:"carry_state"`
}

type WalkConfig struct {
	Steps        int     `yaml:"steps" toml:"steps" json:"steps"`
	Realizations int     `yaml:"realizations" toml:"realizations" json:"realizations"`
	Velocity     float64 `yaml:"velocity" toml:"velocity" json:"velocity"`
	ThetaCRW     float64 `yaml:"theta_crw" toml:"theta_crw" json:"theta_crw"`
	ThetaBRW     float64 `yaml:"theta_brw" toml:"theta_brw" json:"theta_brw"`
	Weight       float64 `yaml:"weight" toml:"weight" json:"weight"`
	Seed         int64   `yaml:"seed" toml:"seed" json:"seed"`
	Workers      int     `yaml:"workers" toml:"workers" json:"workers"`

	// grid and sweep studies
	Thetas            []float64 `yaml:"thetas" toml:"thetas" json:"thetas"`
	Weights           []float64 `yaml:"weights" toml:"weights" json:"weights"`
	RealizationCounts []int     `yaml:"realization_counts" toml:"realization_counts" json:"realization_counts"`
}

type FlockConfig struct {
	N            int     `yaml:"n" toml:"n" json:"n"`
	Repellants   int     `yaml:"repellants" toml:"repellants" json:"repellants"`
	Width        float64 `yaml:"width" toml:"width" json:"width"`
	Height       float64 `yaml:"height" toml:"height" json:"height"`
	CenterX      float64 `yaml:"center_x" toml:"center_x" json:"center_x"`
	CenterY      float64 `yaml:"center_y" toml:"center_y" json:"center_y"`
	StartX       float64 `yaml:"start_x" toml:"start_x" json:"start_x"`
	StartY       float64 `yaml:"start_y" toml:"start_y" json:"start_y"`
	P            float64 `yaml:"p" toml:"p" json:"p"` // initial position spread
	V            float64 `yaml:"v" toml:"v" json:"v"` // initial velocity spread
	Cohesion     float64 `yaml:"cohesion" toml:"cohesion" json:"cohesion"`
	Separation   float64 `yaml:"separation" toml:"separation" json:"separation"`
	Alignment    float64 `yaml:"alignment" toml:"alignment" json:"alignment"`
	Noise        float64 `yaml:"noise" toml:"noise" json:"noise"`
	VLimit       float64 `yaml:"vlimit" toml:"vlimit" json:"vlimit"`
	Repulsion    float64 `yaml:"repellant_strength" toml:"repellant_strength" json:"repellant_strength"`
	Steps        int     `yaml:"steps" toml:"steps" json:"steps"`
	Realizations int     `yaml:"realizations" toml:"realizations" json:"realizations"`
	Seed         int64   `yaml:"seed" toml:"seed" json:"seed"`
	Workers      int     `yaml:"workers" toml:"workers" json:"workers"`

	// noise scan
	Noises []float64 `yaml:"noises" toml:"noises" json:"noises"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "polymer",
		ForceField: ForceFieldConfig{
			EpsilonLJ:   md.DefaultEpsilonLJ,
			CutoffLJ:    md.DefaultCutoffLJ,
			SpringCoeff: md.DefaultSpringCoeff,
			MinSep:      md.DefaultMinSep,
			Temperature: md.DefaultTemperature,
			Guard:       md.GuardClamp.String(),
			MinDistance: md.DefaultMinDistance,
		},
		Run: RunConfig{
			N:             DefaultN,
			Steps:         DefaultSteps,
			Dt:            md.DefaultDt,
			Seed:          DefaultSeed,
			PrintInterval: DefaultPrintInterval,
			Workers:       1,
			ValidateState: true,
		},
		Walk: WalkConfig{
			Steps:        DefaultWalkSteps,
			Realizations: DefaultWalkRealizations,
			Velocity:     DefaultWalkVelocity,
			Seed:         DefaultSeed,
			Workers:      1,
		},
		Flock: defaultFlock(),
	}
}

func defaultFlock() FlockConfig {
	p := flock.DefaultParams()
	return FlockConfig{
		N:            p.N,
		Width:        p.Box.Width,
		Height:       p.Box.Height,
		P:            p.P,
		V:            p.V,
		Cohesion:     p.Cohesion,
		Separation:   p.Separation,
		Alignment:    p.Alignment,
		Noise:        p.Noise,
		VLimit:       p.VLimit,
		Repulsion:    p.RepellantStrength,
		Steps:        DefaultFlockSteps,
		Realizations: DefaultFlockRealizations,
		Seed:         DefaultSeed,
		Workers:      1,
	}
}

// Load reads a yaml or toml file over DefaultConfig. The format follows
// the file extension; anything but .toml is read as yaml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(cfg)
		data = []byte(sb.String())
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Params builds validated engine parameters for a chain of n particles.
func (c *Config) Params() (md.Params, error) {
	guard, err := md.ParseGuard(c.ForceField.Guard)
	if err != nil {
		return md.Params{}, err
	}
	p := md.Params{
		EpsilonLJ:   c.ForceField.EpsilonLJ,
		CutoffLJ:    c.ForceField.CutoffLJ,
		SpringCoeff: c.ForceField.SpringCoeff,
		MinSep:      c.ForceField.MinSep,
		Temperature: c.ForceField.Temperature,
		Dt:          c.Run.Dt,
		Guard:       guard,
		MinDistance: c.ForceField.MinDistance,
	}
	if err := p.Validate(); err != nil {
		return md.Params{}, err
	}
	return p, nil
}

// Validate checks the polymer part of the config: force field, run
// and, when a sweep parameter is set, the sweep values.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Params(); err != nil {
		errs = append(errs, err)
	}
	if err := md.ValidateN(c.Run.N); err != nil && c.Sweep.Parameter != SweepN {
		errs = append(errs, err)
	}
	if c.Run.Steps <= 0 {
		errs = append(errs, &md.ConfigError{Field: "steps", Value: c.Run.Steps, Reason: "must be > 0"})
	}
	if c.Run.PrintInterval < 0 {
		errs = append(errs, &md.ConfigError{Field: "print_interval", Value: c.Run.PrintInterval, Reason: "must be >= 0"})
	}

	switch c.Sweep.Parameter {
	case "":
	case SweepN:
		for _, v := range c.Sweep.Values {
			if v != float64(int(v)) {
				errs = append(errs, &md.ConfigError{Field: "sweep.values", Value: v, Reason: "n must be an integer"})
				continue
			}
			if err := md.ValidateN(int(v)); err != nil {
				errs = append(errs, err)
			}
		}
	case SweepEpsilon:
		for _, v := range c.Sweep.Values {
			if v < 0 {
				errs = append(errs, &md.ConfigError{Field: "sweep.values", Value: v, Reason: "epsilon must be >= 0"})
			}
		}
	default:
		errs = append(errs, &md.ConfigError{Field: "sweep.parameter", Value: c.Sweep.Parameter, Reason: "want n or epsilon"})
	}
	if c.Sweep.Parameter != "" && len(c.Sweep.Values) == 0 {
		errs = append(errs, &md.ConfigError{Field: "sweep.values", Value: nil, Reason: "sweep needs at least one value"})
	}
	return errors.Join(errs...)
}

// ValidateWalk checks the random walk section.
func (c *Config) ValidateWalk() error {
	w := c.Walk
	var errs []error
	if w.Steps < 2 {
		errs = append(errs, &md.ConfigError{Field: "walk.steps", Value: w.Steps, Reason: "must be >= 2"})
	}
	if w.Realizations <= 0 {
		errs = append(errs, &md.ConfigError{Field: "walk.realizations", Value: w.Realizations, Reason: "must be > 0"})
	}
	if w.Velocity <= 0 {
		errs = append(errs, &md.ConfigError{Field: "walk.velocity", Value: w.Velocity, Reason: "must be > 0"})
	}
	if w.Weight < 0 || w.Weight > 1 {
		errs = append(errs, &md.ConfigError{Field: "walk.weight", Value: w.Weight, Reason: "must be in [0, 1]"})
	}
	for _, v := range w.Weights {
		if v < 0 || v > 1 {
			errs = append(errs, &md.ConfigError{Field: "walk.weights", Value: v, Reason: "must be in [0, 1]"})
		}
	}
	for _, n := range w.RealizationCounts {
		if n <= 0 {
			errs = append(errs, &md.ConfigError{Field: "walk.realization_counts", Value: n, Reason: "must be > 0"})
		}
	}
	return errors.Join(errs...)
}

// FlockParams builds validated boid parameters and checks the run
// section of the flock config.
func (c *Config) FlockParams() (flock.Params, error) {
	f := c.Flock
	p := flock.Params{
		N:                 f.N,
		Repellants:        f.Repellants,
		Box:               flock.Box{Center: r2.Vec{X: f.CenterX, Y: f.CenterY}, Width: f.Width, Height: f.Height},
		Start:             r2.Vec{X: f.StartX, Y: f.StartY},
		P:                 f.P,
		V:                 f.V,
		Cohesion:          f.Cohesion,
		Separation:        f.Separation,
		Alignment:         f.Alignment,
		Noise:             f.Noise,
		VLimit:            f.VLimit,
		RepellantStrength: f.Repulsion,
	}
	errs := []error{p.Validate()}
	if f.Steps <= 0 {
		errs = append(errs, &md.ConfigError{Field: "flock.steps", Value: f.Steps, Reason: "must be > 0"})
	}
	if f.Realizations <= 0 {
		errs = append(errs, &md.ConfigError{Field: "flock.realizations", Value: f.Realizations, Reason: "must be > 0"})
	}
	for _, v := range f.Noises {
		if v < 0 {
			errs = append(errs, &md.ConfigError{Field: "flock.noises", Value: v, Reason: "must be >= 0"})
		}
	}
	if err := errors.Join(errs...); err != nil {
		return flock.Params{}, err
	}
	return p, nil
}
