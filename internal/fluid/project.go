package fluid

import "gonum.org/v1/gonum/spatial/r2"

// Boundary is a wall half-plane: points with pos.Normal >= Offset are inside.
type Boundary struct {
	Normal r2.Vec
	Offset float64
}

// Boundaries returns the left, bottom, right and top walls of a
// width x height domain.
func Boundaries(width, height float64) [4]Boundary {
	return [4]Boundary{
		{Normal: r2.Vec{X: 1, Y: 0}, Offset: 0},
		{Normal: r2.Vec{X: 0, Y: 1}, Offset: 0},
		{Normal: r2.Vec{X: -1, Y: 0}, Offset: -width},
		{Normal: r2.Vec{X: 0, Y: -1}, Offset: -height},
	}
}

// Depth returns how far pos sits inside the wall, clamped at zero.
func (b Boundary) Depth(pos r2.Vec) float64 {
	return max(r2.Dot(pos, b.Normal)-b.Offset, 0)
}

// projectCorrect runs the projection pass against a snapshot of the state
// produced by computeDensity.
func (s *Solver) projectCorrect() {
	ps := s.store.Slice()
	copy(s.snapshot, ps)
	s.parallel(len(ps), s.projectRange)
}

func (s *Solver) projectRange(start, end int) {
	ps := s.store.Slice()
	for i := start; i < end; i++ {
		s.projectAt(i, &ps[i])
	}
}

// projectAt writes only particle i.
func (s *Solver) projectAt(i int, pi *Particle) {
	k := &s.k
	p := &s.params

	xproj := pi.Pos
	for _, n := range s.neighborhoods[i] {
		pj := &s.snapshot[n.Index]
		r := n.R
		dx := r2.Sub(pj.Pos, pi.Pos)
		a := 1 - r/k.h
		a2 := a * a

		// relaxation
		d := k.dt2 * ((pi.NearPressure+pj.NearPressure)*a2*a*k.kernNear + (pi.Pressure+pj.Pressure)*a2*k.kern) / 2
		xproj = r2.Sub(xproj, r2.Scale(d/(r*pi.Mass), dx))

		// surface tension
		xproj = r2.Add(xproj, r2.Scale(p.SurfaceTension/pi.Mass*pj.Mass*a2*k.kern, dx))

		// linear and quadratic viscosity
		u := r2.Dot(r2.Sub(pi.Vel, pj.Vel), dx)
		if u > 0 {
			u /= r
			impulse := 0.5 * k.dt * a * (p.LinearViscosity*u + p.QuadraticViscosity*u*u)
			xproj = r2.Sub(xproj, r2.Scale(impulse*k.dt, dx))
		}
	}

	pi.Pos = xproj
	pi.Vel = r2.Scale(1/k.dt, r2.Sub(xproj, pi.PrevPos))

	radius := p.ParticleRadius
	for _, b := range s.bounds {
		if d := b.Depth(pi.Pos); d < radius {
			pi.Vel = r2.Add(pi.Vel, r2.Scale((radius-d)/k.dt, b.Normal))
		}
	}
}
