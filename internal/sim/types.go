package sim

import (
	"time"

	"github.com/san-kum/fluidsim/internal/fluid"
	"github.com/san-kum/fluidsim/internal/telemetry"
	"gonum.org/v1/gonum/spatial/r2"
)

type Metric interface {
	Name() string
	Observe(ps []fluid.Particle, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(frame int, s *fluid.Solver)
}

// Config describes a headless run. Blocks lists the frames before which a
// block of the solver's BlockParticles is dropped.
type Config struct {
	Frames      int
	SampleEvery int // keyframe interval; 0 disables keyframes
	Validate    bool
	Blocks      []int
}

// FrameStats is one row of the per-frame record.
type FrameStats struct {
	Frame         int     `csv:"frame" json:"frame"`
	Time          float64 `csv:"time" json:"time"`
	Particles     int     `csv:"particles" json:"particles"`
	Interior      int     `csv:"interior" json:"interior"`
	MeanDensity   float64 `csv:"mean_density" json:"mean_density"`
	StdDensity    float64 `csv:"std_density" json:"std_density"`
	MedianDensity float64 `csv:"median_density" json:"median_density"`
	MeanNeighbors float64 `csv:"mean_neighbors" json:"mean_neighbors"`
	KineticEnergy float64 `csv:"kinetic_energy" json:"kinetic_energy"`
	MaxSpeed      float64 `csv:"max_speed" json:"max_speed"`
	StepMillis    float64 `csv:"step_ms" json:"step_ms"`
}

// Keyframe is a snapshot of every particle position after a frame.
type Keyframe struct {
	Frame     int
	Time      float64
	Positions []r2.Vec
}

type Result struct {
	Frames    []FrameStats
	Keyframes []Keyframe
	Final     []r2.Vec
	Metrics   map[string]float64
	Perf      []telemetry.PerfStatsCSV

	FramesRun int
	Elapsed   time.Duration
}

// FramesPerSecond is the wall-clock simulation throughput.
func (r *Result) FramesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.FramesRun) / r.Elapsed.Seconds()
}
