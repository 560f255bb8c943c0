package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/fluidsim/internal/fluid"
)

// fakeClock advances by step on every reading.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestPerfCollector_Stats(t *testing.T) {
	p := NewPerfCollector(4)
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Millisecond}
	p.now = clock.now

	for range 2 {
		p.StartFrame()
		p.StartPhase(fluid.PhaseIntegrate)
		p.StartPhase(fluid.PhaseDensity)
		p.StartPhase(fluid.PhaseIntegrate)
		p.EndFrame()
	}

	s := p.Stats()
	if p.Samples() != 2 {
		t.Fatalf("expected 2 samples, got %d", p.Samples())
	}
	// five clock readings per frame, four intervals
	if s.AvgFrameDuration != 4*time.Millisecond {
		t.Errorf("expected 4ms frames, got %v", s.AvgFrameDuration)
	}
	if s.PhaseAvg[fluid.PhaseIntegrate] != 2*time.Millisecond || s.PhaseAvg[fluid.PhaseDensity] != time.Millisecond {
		t.Errorf("unexpected phase averages: %v", s.PhaseAvg)
	}
	if s.PhasePct[fluid.PhaseIntegrate] != 50 {
		t.Errorf("expected integrate at 50%%, got %f", s.PhasePct[fluid.PhaseIntegrate])
	}
	if s.FramesPerSecond != 250 {
		t.Errorf("expected 250 frames/s, got %f", s.FramesPerSecond)
	}
}

func TestPerfCollector_Window(t *testing.T) {
	p := NewPerfCollector(3)
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Millisecond}
	p.now = clock.now

	for range 5 {
		p.StartFrame()
		p.EndFrame()
	}
	if p.Samples() != 3 {
		t.Errorf("window should cap at 3 samples, got %d", p.Samples())
	}
	s := p.Stats()
	if s.MinFrameDuration != time.Millisecond || s.MaxFrameDuration != time.Millisecond {
		t.Errorf("min=%v max=%v", s.MinFrameDuration, s.MaxFrameDuration)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	s := NewPerfCollector(0).Stats()
	if s.AvgFrameDuration != 0 || s.PhaseAvg == nil || s.PhasePct == nil {
		t.Errorf("unexpected empty stats: %+v", s)
	}
}

func TestPerfCollector_ObservesSolver(t *testing.T) {
	s, err := fluid.New(fluid.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	s.InitDamBreak(100)

	p := NewPerfCollector(10)
	s.SetPhaseObserver(p)
	p.StartFrame()
	s.Step()
	p.EndFrame()

	stats := p.Stats()
	for _, phase := range Phases {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %s not recorded", phase)
		}
	}
}

func TestPerfStats_LogStats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := PerfStats{
		AvgFrameDuration: 2 * time.Millisecond,
		FramesPerSecond:  500,
		PhasePct:         map[string]float64{fluid.PhaseDensity: 61.25},
	}
	s.LogStats(logger)

	out := buf.String()
	for _, want := range []string{"msg=perf", "stats.avg_frame_us=2000", "stats.density_pct=61.2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}

	row := s.ToCSV(40)
	if row.WindowEnd != 40 || row.DensityPct != 61.25 || row.AvgFrameUS != 2000 {
		t.Errorf("unexpected csv row %+v", row)
	}
}
