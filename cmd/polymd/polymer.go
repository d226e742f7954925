package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/polymd/internal/config"
	"github.com/san-kum/polymd/internal/md"
	"github.com/san-kum/polymd/internal/sim"
	"github.com/san-kum/polymd/internal/storage"
	"github.com/san-kum/polymd/internal/viz"
)

// applyPolymerFlags overrides config values with explicitly set flags.
func applyPolymerFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("n") {
		cfg.Run.N = numParticles
	}
	if f.Changed("steps") {
		cfg.Run.Steps = steps
	}
	if f.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if f.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if f.Changed("temperature") {
		cfg.ForceField.Temperature = temperature
	}
	if f.Changed("epsilon") {
		cfg.ForceField.EpsilonLJ = epsilon
	}
	if f.Changed("guard") {
		cfg.ForceField.Guard = guard
	}
	if f.Changed("print-interval") {
		cfg.Run.PrintInterval = printInterval
	}
	if f.Changed("workers") {
		cfg.Run.Workers = workers
	}
	if f.Changed("snapshots") {
		cfg.Run.Snapshots = snapshots
	}
	if f.Changed("values") {
		cfg.Sweep.Values = sweepValues
	}
	if f.Changed("carry") {
		cfg.Sweep.CarryState = carryState
	}
}

func runOptions(cfg *config.Config) sim.Options {
	return sim.Options{
		Steps:         cfg.Run.Steps,
		Seed:          cfg.Run.Seed,
		PrintInterval: cfg.Run.PrintInterval,
		Workers:       cfg.Run.Workers,
		ValidateState: cfg.Run.ValidateState,
	}
}

func runPolymer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("polymer", "")
	if err != nil {
		return err
	}
	applyPolymerFlags(cmd, cfg)
	cfg.Sweep = config.SweepConfig{}
	if err := cfg.Validate(); err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	run, err := st.Create(cfg.Name)
	if err != nil {
		return err
	}

	runner := sim.New(logger)
	var frames *storage.FrameWriter
	if cfg.Run.Snapshots {
		frames = run.Frames(cfg.Run.PrintInterval, viz.DefaultSVGOptions())
		runner.AddObserver(frames)
	}

	fmt.Printf("running polymer N=%d for %d steps...\n", cfg.Run.N, cfg.Run.Steps)
	x0 := md.InitialConfiguration(p.MinSep, cfg.Run.N)
	res, runErr := runner.Run(cmd.Context(), sim.Stage{}, x0, p, runOptions(cfg))
	if res == nil {
		return runErr
	}

	if err := run.SaveRun(cfg, res, frameCount(frames)); err != nil {
		return errors.Join(runErr, err)
	}
	if err := frameErr(frames); err != nil {
		logger.Warn("snapshots incomplete", "err", err)
	}

	printResult(run.ID, res)
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	fallback := ""
	if len(args) == 1 {
		switch args[0] {
		case config.SweepN:
			fallback = "vary-n"
		case config.SweepEpsilon:
			fallback = "vary-epsilon"
		default:
			return fmt.Errorf("unknown sweep parameter %q (want n or epsilon)", args[0])
		}
	}
	cfg, err := loadConfig("polymer", fallback)
	if err != nil {
		return err
	}
	applyPolymerFlags(cmd, cfg)
	if len(args) == 1 {
		cfg.Sweep.Parameter = args[0]
	}
	if cfg.Sweep.Parameter == "" {
		return fmt.Errorf("no sweep parameter: pass n or epsilon, or set sweep.parameter")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	run, err := st.Create(cfg.Name)
	if err != nil {
		return err
	}

	runner := sim.New(logger)
	var frames *storage.FrameWriter
	if cfg.Run.Snapshots {
		frames = run.Frames(cfg.Run.PrintInterval, viz.DefaultSVGOptions())
		runner.AddObserver(frames)
	}

	sw := sim.Sweep{
		Parameter:   cfg.Sweep.Parameter,
		Values:      cfg.Sweep.Values,
		CarryState:  cfg.Sweep.CarryState,
		N:           cfg.Run.N,
		Concurrency: concurrency,
	}
	fmt.Printf("sweeping %s over %v (%d steps per stage)...\n", sw.Parameter, sw.Values, cfg.Run.Steps)
	res, runErr := runner.Sweep(cmd.Context(), sw, p, runOptions(cfg))
	if res == nil {
		return runErr
	}

	if err := run.SaveSweep(cfg, res, frameCount(frames)); err != nil {
		return errors.Join(runErr, err)
	}
	if err := frameErr(frames); err != nil {
		logger.Warn("snapshots incomplete", "err", err)
	}

	fmt.Printf("\nrun id: %s\n", run.ID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tN\tSTEPS\tELAPSED\tFINAL RG\tMEAN RG\tMEAN BOND")
	for _, r := range res.Stages {
		if r == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.4f\t%.4f\t%.4f\n",
			r.Stage, r.Stage.N, r.StepsTaken, r.Elapsed.Round(time.Millisecond),
			last(r.Rg), r.Metrics["mean_rg"], r.Metrics["mean_bond_length"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	rg, _ := res.Series()
	if rg != nil {
		var series [][]float64
		var labels []string
		for i, r := range res.Stages {
			if r != nil {
				series = append(series, rg.RawRowView(i))
				labels = append(labels, r.Stage.String())
			}
		}
		fmt.Println()
		fmt.Println(viz.PlotSeries(series, labels, viz.PlotOptions{Height: 10, Width: 80, Caption: "radius of gyration"}))
	}
	return runErr
}

func printResult(runID string, res *sim.Result) {
	fmt.Printf("\ncompleted %d steps in %v\n", res.StepsTaken, res.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final rg: %.6f (rms %.6f)\n", last(res.Rg), last(res.RgRMS))

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, res.Metrics[name])
	}

	canvas := viz.NewCanvas(40, 12)
	canvas.DrawChain(res.Final, viz.DefaultWindow)
	fmt.Println()
	fmt.Print(canvas.String())

	if len(res.Rg) > 1 {
		fmt.Println()
		fmt.Println(viz.PlotSeries([][]float64{res.Rg}, nil, viz.PlotOptions{Height: 10, Width: 80, Caption: "radius of gyration"}))
	}
}

func frameCount(f *storage.FrameWriter) int {
	if f == nil {
		return 0
	}
	return f.Count()
}

func frameErr(f *storage.FrameWriter) error {
	if f == nil {
		return nil
	}
	return f.Err()
}

func last(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}
