package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/dynamo"
	"github.com/san-kum/fluidsim/internal/fluid"
	"github.com/san-kum/fluidsim/internal/sim"
	"github.com/san-kum/fluidsim/internal/storage"
	"github.com/san-kum/fluidsim/internal/telemetry"
	"github.com/san-kum/fluidsim/internal/viz"
	"github.com/spf13/cobra"
)

const perfWindowFrames = 40

// loadConfig resolves the preset named in args (default dam_break), or the
// --config file when given, and applies the --workers override.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	name := "dam_break"
	if len(args) > 0 {
		name = args[0]
	}

	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(config.ListPresets(), ", "))
		}
	}
	if cfg.Name == "" {
		cfg.Name = name
	}

	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		cfg.Solver.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfg.Name, err)
	}
	return cfg, nil
}

func newSolver(cfg *config.Config) (*fluid.Solver, error) {
	s, err := fluid.New(cfg.Params())
	if err != nil {
		return nil, err
	}
	s.InitDamBreak(cfg.Particles.Dam)
	return s, nil
}

func runConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Frames:      cfg.Run.Frames,
		SampleEvery: cfg.Run.SampleEvery,
		Validate:    cfg.Run.Validate,
		Blocks:      cfg.Run.Blocks,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("frames") {
		cfg.Run.Frames = frames
	}
	if cfg.Run.Frames <= 0 {
		cfg.Run.Frames = config.DefaultFrames
	}

	logger := newLogger(os.Stderr)
	s, err := newSolver(cfg)
	if err != nil {
		return err
	}
	logger.Info("solver initialised", "preset", cfg.Name, "particles", s.Count(), "workers", dynamo.Workers(cfg.Solver.Workers))

	runner := sim.New(s)
	runner.SetLogger(logger)
	runner.AddDefaultMetrics()
	runner.SetPerf(telemetry.NewPerfCollector(perfWindowFrames))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d particles, %d frames...\n", cfg.Name, s.Count(), cfg.Run.Frames)
	result, err := runner.Run(ctx, runConfig(cfg))
	if err != nil {
		// keep whatever an interrupted run produced
		if result == nil || !errors.Is(err, dynamo.ErrCanceled) {
			return err
		}
		logger.Warn("run interrupted", "frames", result.FramesRun, "err", err)
	}
	defer runner.Release(result)

	if runner.Perf().Samples() > 0 {
		runner.Perf().Stats().LogStats(logger)
	}

	fmt.Printf("completed %d frames in %v (%.1f frames/s)\n",
		result.FramesRun, result.Elapsed.Round(time.Millisecond), result.FramesPerSecond())
	fmt.Printf("particles: %d\n", s.Count())

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Name, s.Params(), result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(m) {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, m[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := newSolver(cfg)
	if err != nil {
		return err
	}

	logger, closeLog, err := liveLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("solver initialised", "preset", cfg.Name, "particles", s.Count())

	return viz.Run(s, cfg.Name, logger)
}

// runBench times headless dam breaks of increasing size.
func runBench(cmd *cobra.Command, args []string) error {
	if benchFrames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", benchFrames)
	}
	logger := newLogger(os.Stderr)

	fmt.Printf("benchmarking dam break, %d frames per run\n\n", benchFrames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tFRAMES\tELAPSED\tFRAMES/S\tSTEPS/S\tMS/FRAME")

	for _, n := range benchCounts {
		cfg := config.DefaultConfig()
		cfg.Particles.Dam = n
		cfg.Particles.Max = max(cfg.Particles.Max, n)
		if cmd.Flags().Changed("workers") {
			cfg.Solver.Workers = workers
		}
		s, err := newSolver(cfg)
		if err != nil {
			return err
		}

		runner := sim.New(s)
		runner.SetLogger(logger)
		result, err := runner.Run(cmd.Context(), sim.Config{Frames: benchFrames})
		if err != nil {
			return fmt.Errorf("bench %d: %w", n, err)
		}

		secs := result.Elapsed.Seconds()
		steps := float64(result.FramesRun * cfg.Solver.Steps)
		fmt.Fprintf(w, "%d\t%d\t%v\t%.1f\t%.1f\t%.2f\n",
			s.Count(),
			result.FramesRun,
			result.Elapsed.Round(time.Millisecond),
			result.FramesPerSecond(),
			steps/secs,
			1000*secs/float64(result.FramesRun),
		)
	}
	return w.Flush()
}

// runCheck runs the same scene several times concurrently and verifies
// that every run is finite, contained and bit-identical.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if runs < 2 {
		return fmt.Errorf("need at least 2 runs, got %d", runs)
	}

	dam := cfg.Particles.Dam
	ens := sim.NewEnsemble(cfg.Params(), runs, func(s *fluid.Solver) { s.InitDamBreak(dam) })

	fmt.Printf("checking %s: %d runs x %d frames\n", cfg.Name, runs, frames)
	results, err := ens.Run(cmd.Context(), sim.Config{Frames: frames, Validate: true, Blocks: cfg.Run.Blocks})
	if err != nil {
		return err
	}

	failed := false
	run, particle := sim.Divergence(results)
	if run >= 0 {
		failed = true
		fmt.Printf("  determinism   FAIL (run %d diverges at particle %d)\n", run, particle)
	} else {
		fmt.Println("  determinism   ok")
	}

	// walls push back through velocity, so fast particles may overshoot
	// by a fraction of the smoothing radius before they turn
	slack := cfg.Physics.SmoothingRadius
	escape := results[0].Metrics["containment"]
	if escape > slack {
		failed = true
		fmt.Printf("  containment   FAIL (%.4f outside)\n", escape)
	} else {
		fmt.Printf("  containment   ok (%.4f)\n", escape)
	}

	rows := results[0].Frames
	first, last := rows[0].Particles, rows[len(rows)-1].Particles
	if last < first || len(results[0].Final) != last {
		failed = true
		fmt.Printf("  particles     FAIL (%d -> %d, final %d)\n", first, last, len(results[0].Final))
	} else {
		fmt.Printf("  particles     ok (%d)\n", last)
	}

	if failed {
		return errors.New("check failed")
	}
	return nil
}
