package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/fluidsim/internal/fluid"
)

func withDensity(density float64, neighbors int) fluid.Particle {
	p := particle(0, 0, 0, 0)
	p.Density = density
	p.Neighbors = neighbors
	return p
}

func TestMeanDensity(t *testing.T) {
	m := NewMeanDensity(InteriorNeighbors)

	m.Observe([]fluid.Particle{withDensity(40, 8), withDensity(50, 10), withDensity(1, 1)}, 0)
	m.Observe([]fluid.Particle{withDensity(60, 8)}, 0.1)
	// a frame without interior particles is ignored
	m.Observe([]fluid.Particle{withDensity(5, 0)}, 0.2)

	if math.Abs(m.Value()-52.5) > 1e-12 {
		t.Errorf("expected mean density 52.5, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestDensityDeviation(t *testing.T) {
	m := NewDensityDeviation(50, InteriorNeighbors)
	m.Observe([]fluid.Particle{withDensity(55, 8)}, 0)
	m.Observe([]fluid.Particle{withDensity(40, 8)}, 0.1)
	m.Observe([]fluid.Particle{withDensity(52, 8)}, 0.2)

	if math.Abs(m.Value()-0.2) > 1e-12 {
		t.Errorf("expected max deviation 0.2, got %f", m.Value())
	}
}

func TestSummarize(t *testing.T) {
	ps := []fluid.Particle{
		withDensity(40, 8),
		withDensity(50, 8),
		withDensity(60, 8),
		withDensity(1, 2),
	}
	ps[0].Vel.X = 2
	ps[3].Vel.Y = -3

	s := Summarize(ps, InteriorNeighbors)
	if s.Count != 4 || s.Interior != 3 {
		t.Fatalf("count=%d interior=%d", s.Count, s.Interior)
	}
	if s.MeanDensity != 50 || s.MedianDensity != 50 {
		t.Errorf("mean=%f median=%f, want 50", s.MeanDensity, s.MedianDensity)
	}
	if math.Abs(s.StdDensity-10) > 1e-12 {
		t.Errorf("expected std 10, got %f", s.StdDensity)
	}
	if s.P95Density != 60 {
		t.Errorf("expected p95 60, got %f", s.P95Density)
	}
	if s.MaxSpeed != 3 || math.Abs(s.KineticEnergy-6.5) > 1e-12 {
		t.Errorf("max speed=%f energy=%f", s.MaxSpeed, s.KineticEnergy)
	}
	if s.MeanNeighbors != 6.5 {
		t.Errorf("expected mean neighbors 6.5, got %f", s.MeanNeighbors)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if s := Summarize(nil, InteriorNeighbors); s != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", s)
	}
	s := Summarize([]fluid.Particle{withDensity(10, 0)}, InteriorNeighbors)
	if s.Count != 1 || s.Interior != 0 || s.MeanDensity != 0 {
		t.Errorf("unexpected summary %+v", s)
	}
}
