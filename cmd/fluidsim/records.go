package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/export"
	"github.com/san-kum/fluidsim/internal/sim"
	"github.com/san-kum/fluidsim/internal/storage"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

// seriesFields maps a series name to the column it reads from a frame row.
var seriesFields = map[string]func(sim.FrameStats) float64{
	"density":   func(f sim.FrameStats) float64 { return f.MeanDensity },
	"median":    func(f sim.FrameStats) float64 { return f.MedianDensity },
	"std":       func(f sim.FrameStats) float64 { return f.StdDensity },
	"neighbors": func(f sim.FrameStats) float64 { return f.MeanNeighbors },
	"energy":    func(f sim.FrameStats) float64 { return f.KineticEnergy },
	"speed":     func(f sim.FrameStats) float64 { return f.MaxSpeed },
	"particles": func(f sim.FrameStats) float64 { return float64(f.Particles) },
	"step":      func(f sim.FrameStats) float64 { return f.StepMillis },
}

func seriesValues(rows []sim.FrameStats, name string) ([]float64, error) {
	get, ok := seriesFields[name]
	if !ok {
		return nil, fmt.Errorf("unknown series %q (available: %s)", name, strings.Join(sortedKeys(seriesFields), ", "))
	}
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = get(r)
	}
	return values, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
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
	fmt.Fprintln(w, "ID\tPRESET\tPARTICLES\tFRAMES\tSIM TIME\tFRAMES/S\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2fs\t%.1f\t%s\n",
			run.ID,
			run.Preset,
			run.Particles,
			run.Frames,
			run.SimTime,
			run.FramesPerSecond,
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("run %s has no frames", runID)
	}
	values, err := seriesValues(rows, series)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s, %d particles, %d frames\n\n", meta.Preset, meta.Particles, meta.Frames)

	graph := asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(series),
	)
	fmt.Println(graph)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var svg string
	if series != "" {
		rows, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		values, err := seriesValues(rows, series)
		if err != nil {
			return err
		}
		svg = export.SeriesToSVG(values, width, width/2, "#2a7fd4")
	} else {
		positions, err := framePositions(st, runID, frameNum)
		if err != nil {
			return err
		}
		p := meta.Params
		svg = export.ParticlesToSVG(positions, p.Width, p.Height, p.ParticleRadius, width)
	}

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

// framePositions returns the keyframe positions for frame, or the final
// positions when frame is negative.
func framePositions(st *storage.Store, runID string, frame int) ([]r2.Vec, error) {
	keyframes, final, err := st.LoadPositions(runID)
	if err != nil {
		return nil, err
	}
	if frame < 0 {
		return final, nil
	}
	for _, kf := range keyframes {
		if kf.Frame == frame {
			return kf.Positions, nil
		}
	}
	available := make([]string, len(keyframes))
	for i, kf := range keyframes {
		available[i] = fmt.Sprint(kf.Frame)
	}
	return nil, fmt.Errorf("run %s has no keyframe %d (available: %s)", runID, frame, strings.Join(available, ", "))
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDOMAIN\tDAM\tBLOCK\tFRAMES\tGRAVITY")
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%gx%g\t%d\t%d\t%d\t%g\n",
			name,
			c.Domain.Width, c.Domain.Height,
			c.Particles.Dam,
			c.Particles.Block,
			c.Run.Frames,
			c.Physics.Gravity[1],
		)
	}
	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
	}

	if len(args) == 0 {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
