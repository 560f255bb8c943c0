package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/san-kum/fluidsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	frames     int
	workers    int
	noSave     bool
	// bench
	benchCounts []int
	benchFrames int
	// check
	runs int
	// plot / export
	series   string
	outPath  string
	frameNum int
	width    int
	// config
	preset string
)

// main registers the fluidsim commands and runs the root command. With no
// subcommand the interactive preset picker starts.
func main() {
	rootCmd := &cobra.Command{
		Use:   "fluidsim",
		Short: "2-d particle fluid simulation lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := liveLogger()
			if err != nil {
				return err
			}
			defer closeLog()
			return viz.RunInteractive(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fluidsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and save the record",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&frames, "frames", 0, "frames to simulate (0 = preset value)")
	runCmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	runCmd.Flags().IntVar(&workers, "workers", 0, "solver workers (0 = all cpus)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write a run record")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	liveCmd.Flags().IntVar(&workers, "workers", 0, "solver workers (0 = all cpus)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure solver throughput for several particle counts",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntSliceVar(&benchCounts, "counts", []int{500, 1000, 2000, 4000}, "dam particle counts")
	benchCmd.Flags().IntVar(&benchFrames, "frames", 100, "frames per count")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "solver workers (0 = all cpus)")

	checkCmd := &cobra.Command{
		Use:   "check [preset]",
		Short: "run identical simulations concurrently and check invariants",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	checkCmd.Flags().IntVar(&runs, "runs", 3, "number of concurrent runs")
	checkCmd.Flags().IntVar(&frames, "frames", 60, "frames per run")
	checkCmd.Flags().StringVar(&configFile, "config", "", "YAML config file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a per-frame series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "density", "series: density|std|neighbors|energy|speed|particles|step")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export particle positions or a series as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&frameNum, "frame", -1, "keyframe to draw (-1 = final positions)")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width in pixels")
	exportSVGCmd.Flags().StringVar(&series, "series", "", "draw this series instead of particles")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write a config file (default stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	configCmd.Flags().StringVar(&preset, "preset", "dam_break", "preset to write")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, checkCmd, listCmd, plotCmd,
		exportJSONCmd, exportSVGCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// liveLogger writes to a file in the data directory since the terminal
// belongs to the live view.
func liveLogger() (*slog.Logger, func(), error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "live.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open live log: %w", err)
	}
	return newLogger(f), func() { f.Close() }, nil
}
