package sim

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/san-kum/fluidsim/internal/dynamo"
	"github.com/san-kum/fluidsim/internal/fluid"
	"github.com/san-kum/fluidsim/internal/metrics"
	"github.com/san-kum/fluidsim/internal/telemetry"
)

// Runner drives a solver frame by frame and records what happened.
type Runner struct {
	solver    *fluid.Solver
	metrics   []Metric
	observers []Observer
	perf      *telemetry.PerfCollector
	pool      *FramePool
	logger    *slog.Logger
}

func New(s *fluid.Solver) *Runner {
	return &Runner{
		solver:    s,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		pool:      NewFramePool(s.Params().MaxParticles),
		logger:    slog.Default(),
	}
}

func (r *Runner) Solver() *fluid.Solver          { return r.solver }
func (r *Runner) AddMetric(m Metric)             { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)         { r.observers = append(r.observers, o) }
func (r *Runner) SetLogger(l *slog.Logger)       { r.logger = l }
func (r *Runner) SetPool(p *FramePool)           { r.pool = p }
func (r *Runner) Perf() *telemetry.PerfCollector { return r.perf }

// SetPerf attaches a collector that times every frame and its phases. A
// window summary is recorded each time the window fills.
func (r *Runner) SetPerf(p *telemetry.PerfCollector) {
	r.perf = p
	if p == nil {
		r.solver.SetPhaseObserver(nil)
		return
	}
	r.solver.SetPhaseObserver(p)
}

// AddDefaultMetrics registers the standard run metrics.
func (r *Runner) AddDefaultMetrics() {
	p := r.solver.Params()
	r.AddMetric(metrics.NewMeanDensity(metrics.InteriorNeighbors))
	r.AddMetric(metrics.NewDensityDeviation(p.RestDensity*p.Mass, metrics.InteriorNeighbors))
	r.AddMetric(metrics.NewKineticEnergy())
	r.AddMetric(metrics.NewMaxSpeed())
	r.AddMetric(metrics.NewContainment(r.solver.Boundaries()))
}

// Run advances the solver cfg.Frames times. Cancellation is checked
// between frames; the partial result is returned along with the error.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s := r.solver
	result := &Result{
		Frames:  make([]FrameStats, 0, cfg.Frames),
		Metrics: make(map[string]float64),
	}
	if cfg.SampleEvery > 0 {
		result.Keyframes = make([]Keyframe, 0, cfg.Frames/cfg.SampleEvery+1)
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	blockSize := s.Params().BlockParticles
	start := time.Now()
	defer func() {
		result.Elapsed = time.Since(start)
		for _, m := range r.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
		result.Final = s.Positions(nil)
	}()

	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return result, &dynamo.SimulationError{
				Frame:   s.Frame(),
				Time:    s.Time(),
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrCanceled, ctx.Err()),
			}
		default:
		}

		if slices.Contains(cfg.Blocks, i) {
			if s.AddBlock(blockSize) {
				r.logger.Info("block added", "frame", s.Frame(), "count", blockSize, "total", s.Count())
			} else {
				r.logger.Warn("capacity reached", "frame", s.Frame(), "total", s.Count(), "max", s.Params().MaxParticles)
			}
		}

		stepStart := time.Now()
		r.step()
		stepTime := time.Since(stepStart)
		result.FramesRun++

		ps := s.Particles()
		if cfg.Validate && !fluid.Finite(ps) {
			return result, &dynamo.SimulationError{Frame: s.Frame(), Time: s.Time(), Wrapped: dynamo.ErrInvalidState}
		}

		for _, m := range r.metrics {
			m.Observe(ps, s.Time())
		}
		for _, o := range r.observers {
			o.OnFrame(s.Frame(), s)
		}

		result.Frames = append(result.Frames, frameStats(s, stepTime))
		if cfg.SampleEvery > 0 && s.Frame()%cfg.SampleEvery == 0 {
			result.Keyframes = append(result.Keyframes, Keyframe{
				Frame:     s.Frame(),
				Time:      s.Time(),
				Positions: s.Positions(r.pool.Get()),
			})
		}
		if r.perf != nil && r.perf.Samples() > 0 && s.Frame()%perfWindow == 0 {
			stats := r.perf.Stats()
			result.Perf = append(result.Perf, stats.ToCSV(s.Frame()))
			r.logger.Debug("perf", "frame", s.Frame(), "stats", stats)
		}
	}

	r.logger.Info("run finished",
		"frames", result.FramesRun,
		"particles", s.Count(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

// perfWindow is how often, in frames, a perf summary is recorded.
const perfWindow = 40

func (r *Runner) step() {
	if r.perf == nil {
		r.solver.Step()
		return
	}
	r.perf.StartFrame()
	r.solver.Step()
	r.perf.EndFrame()
}

// Release hands keyframe buffers back to the pool. The result's keyframes
// must not be used afterwards.
func (r *Runner) Release(result *Result) {
	for i := range result.Keyframes {
		r.pool.Put(result.Keyframes[i].Positions)
		result.Keyframes[i].Positions = nil
	}
}

func frameStats(s *fluid.Solver, step time.Duration) FrameStats {
	sum := metrics.Summarize(s.Particles(), metrics.InteriorNeighbors)
	return FrameStats{
		Frame:         s.Frame(),
		Time:          s.Time(),
		Particles:     sum.Count,
		Interior:      sum.Interior,
		MeanDensity:   sum.MeanDensity,
		StdDensity:    sum.StdDensity,
		MedianDensity: sum.MedianDensity,
		MeanNeighbors: sum.MeanNeighbors,
		KineticEnergy: sum.KineticEnergy,
		MaxSpeed:      sum.MaxSpeed,
		StepMillis:    float64(step.Microseconds()) / 1000,
	}
}

func validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d: %w", cfg.Frames, dynamo.ErrParameterBounds)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d: %w", cfg.SampleEvery, dynamo.ErrParameterBounds)
	}
	return nil
}
