// Package telemetry times solver frames and their phases over a rolling
// window.
package telemetry

import (
	"log/slog"
	"time"

	"github.com/san-kum/fluidsim/internal/fluid"
)

// Phases in the order a substep runs them.
var Phases = []string{
	fluid.PhaseIntegrate,
	fluid.PhaseGrid,
	fluid.PhaseDensity,
	fluid.PhaseProject,
}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks frame timings over a rolling window. It implements
// fluid.PhaseObserver, so phase time is summed across all substeps of a
// frame.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// wall-clock time between rendered frames in the live view
	lastRender     time.Time
	renderInterval time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 40
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		now:           time.Now,
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = p.now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame finishes timing the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// RecordRender records the interval between rendered frames.
func (p *PerfCollector) RecordRender() {
	now := p.now()
	if !p.lastRender.IsZero() {
		p.renderInterval = now.Sub(p.lastRender)
	}
	p.lastRender = now
}

// Samples returns the number of frames in the current window.
func (p *PerfCollector) Samples() int { return p.sampleCount }

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgFrameDuration time.Duration
	MinFrameDuration time.Duration
	MaxFrameDuration time.Duration

	// average time per frame spent in each phase, and its share in percent
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	FramesPerSecond float64

	RenderInterval time.Duration
	FPS            float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.renderInterval > 0 {
		fps = float64(time.Second) / float64(p.renderInterval)
	}

	stats := PerfStats{
		PhaseAvg:       make(map[string]time.Duration),
		PhasePct:       make(map[string]float64),
		RenderInterval: p.renderInterval,
		FPS:            fps,
	}
	if p.sampleCount == 0 {
		return stats
	}

	var total time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.FrameDuration

		if i == 0 || s.FrameDuration < stats.MinFrameDuration {
			stats.MinFrameDuration = s.FrameDuration
		}
		if s.FrameDuration > stats.MaxFrameDuration {
			stats.MaxFrameDuration = s.FrameDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	stats.AvgFrameDuration = total / time.Duration(p.sampleCount)
	for phase, sum := range phaseSum {
		stats.PhaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if stats.AvgFrameDuration > 0 {
			stats.PhasePct[phase] = float64(stats.PhaseAvg[phase]) / float64(stats.AvgFrameDuration) * 100
		}
	}
	if stats.AvgFrameDuration > 0 {
		stats.FramesPerSecond = float64(time.Second) / float64(stats.AvgFrameDuration)
	}
	return stats
}

// LogStats writes the window summary to logger at info level.
func (s PerfStats) LogStats(logger *slog.Logger) {
	logger.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrameDuration.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrameDuration.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrameDuration.Microseconds()),
		slog.Float64("frames_per_sec", s.FramesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat row for CSV export of a window.
type PerfStatsCSV struct {
	WindowEnd    int     `csv:"window_end"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	FramesPerSec float64 `csv:"frames_per_sec"`
	IntegratePct float64 `csv:"integrate_pct"`
	GridPct      float64 `csv:"grid_pct"`
	DensityPct   float64 `csv:"density_pct"`
	ProjectPct   float64 `csv:"project_pct"`
}

// ToCSV flattens s for a window ending at frame windowEnd.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgFrameUS:   s.AvgFrameDuration.Microseconds(),
		MinFrameUS:   s.MinFrameDuration.Microseconds(),
		MaxFrameUS:   s.MaxFrameDuration.Microseconds(),
		FramesPerSec: s.FramesPerSecond,
		IntegratePct: s.PhasePct[fluid.PhaseIntegrate],
		GridPct:      s.PhasePct[fluid.PhaseGrid],
		DensityPct:   s.PhasePct[fluid.PhaseDensity],
		ProjectPct:   s.PhasePct[fluid.PhaseProject],
	}
}
