package fluid

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/san-kum/fluidsim/internal/dynamo"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

func TestNew_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		err    error
	}{
		{"narrow domain", func(p *Params) { p.Width = 0.3 }, dynamo.ErrGridTooSmall},
		{"zero smoothing radius", func(p *Params) { p.SmoothingRadius = 0 }, dynamo.ErrParameterBounds},
		{"no substeps", func(p *Params) { p.SolverSteps = 0 }, dynamo.ErrParameterBounds},
		{"no neighbor slots", func(p *Params) { p.MaxNeighbors = 0 }, dynamo.ErrParameterBounds},
		{"epsilon above H", func(p *Params) { p.Epsilon = 1 }, dynamo.ErrParameterBounds},
		{"NaN mass", func(p *Params) { p.Mass = math.NaN() }, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if _, err := New(p); !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestNew_NarrowButValid(t *testing.T) {
	p := DefaultParams()
	p.Width = 0.6 // three cells
	if _, err := New(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubstep_FreeFall(t *testing.T) {
	s := newTestSolver(t, nil)
	s.place(r2.Vec{X: 10, Y: 7})
	dt := s.params.Dt()
	g := s.params.Gravity.Y

	s.substep()
	p := s.Particles()[0]
	if !scalar.EqualWithinAbs(p.Pos.Y, 7+g*dt*dt, 1e-12) || p.Pos.X != 10 {
		t.Errorf("after one substep: pos=%v, want y=%g", p.Pos, 7+g*dt*dt)
	}
	if !scalar.EqualWithinAbs(p.Vel.Y, g*dt, 1e-9) || p.Vel.X != 0 {
		t.Errorf("after one substep: vel=%v, want y=%g", p.Vel, g*dt)
	}

	s.Clear()
	s.place(r2.Vec{X: 10, Y: 7})
	s.Step()
	p = s.Particles()[0]
	// sum of k*g*dt^2 over ten substeps
	if !scalar.EqualWithinAbs(p.Pos.Y, 7+55*g*dt*dt, 1e-9) {
		t.Errorf("after one frame: y=%g, want %g", p.Pos.Y, 7+55*g*dt*dt)
	}
	if !scalar.EqualWithinAbs(p.Vel.Y, 10*g*dt, 1e-9) {
		t.Errorf("after one frame: vy=%g, want %g", p.Vel.Y, 10*g*dt)
	}
	if s.Frame() != 1 || !scalar.EqualWithinAbs(s.Time(), s.params.FrameTime, 1e-15) {
		t.Errorf("frame=%d time=%g", s.Frame(), s.Time())
	}
}

func TestStep_PreservesCount(t *testing.T) {
	for _, n := range []int{0, 1, 100, 2025} {
		s := newTestSolver(t, nil)
		placed := s.InitDamBreak(n)
		for range 3 {
			s.Step()
		}
		if s.Count() != placed {
			t.Errorf("n=%d: count changed from %d to %d", n, placed, s.Count())
		}
		if !Finite(s.Particles()) {
			t.Errorf("n=%d: non-finite state", n)
		}
	}
}

func TestStep_WallContainment(t *testing.T) {
	s := newTestSolver(t, nil)
	s.place(r2.Vec{X: 1, Y: 5})
	s.store.At(0).Vel = r2.Vec{X: -10, Y: 0}

	const slack = 0.1
	w, h := s.params.Width, s.params.Height
	for frame := range 120 {
		s.Step()
		p := s.Particles()[0]
		if p.Pos.X < -slack || p.Pos.X > w+slack || p.Pos.Y < -slack || p.Pos.Y > h+slack {
			t.Fatalf("frame %d: particle escaped to %v", frame, p.Pos)
		}
		if frame == 10 && p.Vel.X <= 0 {
			t.Errorf("expected rebound from left wall, vel=%v", p.Vel)
		}
	}
}

func TestPlacement(t *testing.T) {
	s := newTestSolver(t, nil)

	if got := s.InitDamBreak(2000); got != 44*44 {
		t.Fatalf("dam placed %d, want %d", got, 44*44)
	}
	first := s.Particles()[0]
	if first.Pos != (r2.Vec{X: 0.25 * s.params.Width, Y: 0.95 * s.params.Height}) {
		t.Errorf("dam starts at %v", first.Pos)
	}
	second := s.Particles()[44]
	if !scalar.EqualWithinAbs(first.Pos.Y-second.Pos.Y, 3*s.params.ParticleRadius, 1e-12) {
		t.Errorf("rows not spaced 3r apart: %v %v", first.Pos, second.Pos)
	}

	s.Reset()
	if s.Count() != DefaultDamParticles || s.Frame() != 0 {
		t.Errorf("reset: count=%d frame=%d", s.Count(), s.Frame())
	}

	s.Clear()
	if s.Count() != 0 || len(s.Positions(nil)) != 0 {
		t.Errorf("clear left %d particles", s.Count())
	}
	if got := s.PlaceSquare(r2.Vec{X: 5, Y: 5}, 0); got != 0 {
		t.Errorf("empty square placed %d", got)
	}
}

func TestAddBlock_Capacity(t *testing.T) {
	s := newTestSolver(t, func(p *Params) { p.MaxParticles = 1000 })
	s.InitDamBreak(400)

	if !s.AddBlock(500) || s.Count() != 400+22*22 {
		t.Fatalf("first block: count=%d", s.Count())
	}
	if s.AddBlock(500) || s.Count() != 884 {
		t.Errorf("block past capacity was added, count=%d", s.Count())
	}
	if !s.AddBlock(115) || s.Count() != 984 {
		t.Errorf("small block: count=%d", s.Count())
	}
	// reaching the capacity exactly is refused too
	if s.AddBlock(16) || s.Count() != 984 {
		t.Errorf("block meeting capacity was added, count=%d", s.Count())
	}
}

func TestPlaceSquare_StopsAtCapacity(t *testing.T) {
	s := newTestSolver(t, func(p *Params) { p.MaxParticles = 10 })
	if got := s.PlaceSquare(r2.Vec{X: 5, Y: 10}, 25); got != 10 {
		t.Errorf("placed %d, want 10", got)
	}
	if s.Count() != 10 {
		t.Errorf("count=%d", s.Count())
	}
	s.Step()
}

func TestStep_Deterministic(t *testing.T) {
	run := func(workers int) []r2.Vec {
		s := newTestSolver(t, func(p *Params) { p.Workers = workers })
		s.InitDamBreak(900)
		for range 20 {
			s.Step()
		}
		return s.Positions(nil)
	}

	serial := run(1)
	for _, workers := range []int{1, 4} {
		got := run(workers)
		for i := range serial {
			if got[i] != serial[i] {
				t.Fatalf("workers=%d: particle %d at %v, serial run at %v", workers, i, got[i], serial[i])
			}
		}
	}
}

func TestStep_DamBreakSettles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dam break in short mode")
	}

	s := newTestSolver(t, nil)
	s.InitDamBreak(2000)
	for range 100 {
		s.Step()
	}

	ps := s.Particles()
	if !Finite(ps) {
		t.Fatal("non-finite particle state after 100 frames")
	}

	var interior []float64
	for _, p := range ps {
		if p.Neighbors >= 6 {
			interior = append(interior, p.Density)
		}
	}
	if len(interior) == 0 {
		t.Fatal("no interior particles")
	}
	sort.Float64s(interior)
	median := stat.Quantile(0.5, stat.Empirical, interior, nil)
	rest := s.params.RestDensity
	if median < 0.5*rest || median > 2.5*rest {
		t.Errorf("median interior density %g outside [%g, %g]", median, 0.5*rest, 2.5*rest)
	}
}

func BenchmarkDamBreak(b *testing.B) {
	for b.Loop() {
		s := newTestSolver(b, nil)
		s.InitDamBreak(2000)
		for range 100 {
			s.Step()
		}
	}
}

func BenchmarkSubstep(b *testing.B) {
	s := newTestSolver(b, nil)
	s.Reset()
	for b.Loop() {
		s.substep()
	}
}
