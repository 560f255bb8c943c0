package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Clear removes all particles and neighbor lists and restarts the clock.
// Grid cells are overwritten by the next rebuild.
func (s *Solver) Clear() {
	s.store.Clear()
	s.snapshot = s.snapshot[:0]
	s.neighborhoods = s.neighborhoods[:0]
	s.frames = 0
}

// Reset clears the solver and places the default dam break.
func (s *Solver) Reset() {
	s.Clear()
	s.InitDamBreak(s.params.DamParticles)
}

// InitDamBreak places a square column of n particles near the left wall.
func (s *Solver) InitDamBreak(n int) int {
	p := s.params
	return s.PlaceSquare(r2.Vec{X: 0.25 * p.Width, Y: 0.95 * p.Height}, n)
}

// InitBlock places a square block of n particles near the top centre.
func (s *Solver) InitBlock(n int) int {
	p := s.params
	return s.PlaceSquare(r2.Vec{X: p.Width/2 - p.Height/10, Y: p.Height - p.Height/10}, n)
}

// AddBlock places a block of n particles unless that would reach capacity,
// in which case it does nothing and returns false.
func (s *Solver) AddBlock(n int) bool {
	if s.Count()+n >= s.params.MaxParticles {
		return false
	}
	s.InitBlock(n)
	return true
}

// PlaceSquare appends floor(sqrt(n))^2 particles on a lattice spaced three
// particle radii apart, row by row downwards from start. Placement stops
// early at capacity. It returns the number of particles placed.
func (s *Solver) PlaceSquare(start r2.Vec, n int) int {
	if n <= 0 {
		return 0
	}
	side := int(math.Sqrt(float64(n)))
	spacing := 3 * s.params.ParticleRadius

	placed := 0
	pos := start
	for range side {
		pos.X = start.X
		for range side {
			if !s.place(pos) {
				return placed
			}
			placed++
			pos.X += spacing
		}
		pos.Y -= spacing
	}
	return placed
}

func (s *Solver) place(pos r2.Vec) bool {
	if !s.store.Append(NewParticle(pos, s.params.Mass)) {
		return false
	}
	s.snapshot = append(s.snapshot, Particle{})

	// reuse neighbor buffers left behind by Clear
	n := len(s.neighborhoods)
	if n < cap(s.neighborhoods) && s.neighborhoods[:n+1][n] != nil {
		s.neighborhoods = s.neighborhoods[:n+1]
		s.neighborhoods[n] = s.neighborhoods[n][:0]
	} else {
		s.neighborhoods = append(s.neighborhoods, make([]Neighbor, 0, s.params.MaxNeighbors))
	}
	return true
}
