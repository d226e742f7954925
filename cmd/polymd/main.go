package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/polymd/internal/config"
	"github.com/san-kum/polymd/internal/flock"
	"github.com/san-kum/polymd/internal/md"
	"github.com/san-kum/polymd/internal/storage"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	// polymer
	numParticles  int
	steps         int
	dt            float64
	seed          int64
	temperature   float64
	epsilon       float64
	guard         string
	printInterval int
	workers       int
	snapshots     bool
	sweepValues   []float64
	carryState    bool
	concurrency   int
	stepsPerTick  int

	// walk
	walkSteps    int
	realizations int
	velocity     float64
	thetaCRW     float64
	thetaBRW     float64
	weight       float64

	// flock
	boids      int
	flockSteps int
	noise      float64
	noises     []float64
	repellants int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "polymd",
		Short:         "polymer molecular dynamics, random walk and flocking lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".polymd", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one polymer simulation",
		Args:  cobra.NoArgs,
		RunE:  runPolymer,
	}
	polymerFlags(runCmd)

	sweepCmd := &cobra.Command{
		Use:       "sweep [n|epsilon]",
		Short:     "sweep chain length or LJ strength",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{config.SweepN, config.SweepEpsilon},
		RunE:      runSweep,
	}
	polymerFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "sweep values")
	sweepCmd.Flags().BoolVar(&carryState, "carry", false, "carry the final chain into the next stage")
	sweepCmd.Flags().IntVar(&concurrency, "concurrency", 1, "fresh stages run at once")

	walkCmd := &cobra.Command{
		Use:   "walk",
		Short: "biased correlated random walk efficiency",
		Args:  cobra.NoArgs,
		RunE:  runWalk,
	}
	walkFlags(walkCmd)

	walkWeightsCmd := &cobra.Command{
		Use:   "walk-weights",
		Short: "scan the bias weight for the most efficient walk",
		Args:  cobra.NoArgs,
		RunE:  runWalkWeights,
	}
	walkFlags(walkWeightsCmd)

	flockCmd := &cobra.Command{
		Use:   "flock",
		Short: "boids flocking, optionally scanning the noise strength",
		Args:  cobra.NoArgs,
		RunE:  runFlock,
	}
	flockFlags(flockCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and series as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "integrate a chain with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	polymerFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "steps-per-tick", 50, "integrator steps per frame")

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, sweepCmd, walkCmd, walkWeightsCmd, flockCmd, listCmd, plotCmd, exportCmd, liveCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func polymerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (see presets polymer)")
	cmd.Flags().IntVar(&numParticles, "n", config.DefaultN, "number of particles")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "integration steps")
	cmd.Flags().Float64Var(&dt, "dt", md.DefaultDt, "timestep")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().Float64Var(&temperature, "temperature", md.DefaultTemperature, "noise amplitude")
	cmd.Flags().Float64Var(&epsilon, "epsilon", md.DefaultEpsilonLJ, "LJ strength")
	cmd.Flags().StringVar(&guard, "guard", md.GuardClamp.String(), "near-zero distance handling (clamp, error)")
	cmd.Flags().IntVar(&printInterval, "print-interval", config.DefaultPrintInterval, "progress and snapshot interval")
	cmd.Flags().IntVar(&workers, "workers", 1, "non-bonded pass workers")
	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "write SVG frames every print interval")
}

func walkFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (see presets walk)")
	cmd.Flags().IntVar(&walkSteps, "steps", config.DefaultWalkSteps, "steps per trajectory")
	cmd.Flags().IntVar(&realizations, "realizations", config.DefaultWalkRealizations, "trajectories")
	cmd.Flags().Float64Var(&velocity, "velocity", config.DefaultWalkVelocity, "step length")
	cmd.Flags().Float64Var(&thetaCRW, "theta-crw", 0, "correlated turning half-width")
	cmd.Flags().Float64Var(&thetaBRW, "theta-brw", 0, "biased heading half-width")
	cmd.Flags().Float64Var(&weight, "weight", 0, "bias weight in [0, 1]")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 1, "realization workers")
}

func flockFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (see presets flock)")
	cmd.Flags().IntVar(&boids, "n", flock.DefaultN, "number of boids")
	cmd.Flags().IntVar(&flockSteps, "steps", config.DefaultFlockSteps, "steps per realization")
	cmd.Flags().IntVar(&realizations, "realizations", config.DefaultFlockRealizations, "realizations to average")
	cmd.Flags().Float64Var(&noise, "noise", flock.DefaultNoise, "noise strength c4")
	cmd.Flags().Float64SliceVar(&noises, "noises", nil, "scan these noise strengths")
	cmd.Flags().IntVar(&repellants, "repellants", 0, "number of repellants")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 1, "realization workers")
}

func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "polymd",
		ReportTimestamp: true,
	}), nil
}

// loadConfig resolves the config for cmd. A config file wins over a
// preset; changed flags are applied afterwards by the caller.
func loadConfig(group, fallback string) (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	name := preset
	if name == "" {
		name = fallback
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg := config.GetPreset(group, name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(group))
	}
	return cfg, nil
}
