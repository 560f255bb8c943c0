package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particle is one simulated fluid sample.
type Particle struct {
	Pos     r2.Vec
	PrevPos r2.Vec // position at the start of the current substep
	Vel     r2.Vec
	Mass    float64

	Pressure     float64
	NearPressure float64

	// Raw estimates from the last density pass.
	Density     float64
	NearDensity float64
	Neighbors   int

	Cell CellCoord
}

// NewParticle returns a particle at rest with the given mass.
func NewParticle(pos r2.Vec, mass float64) Particle {
	return Particle{Pos: pos, PrevPos: pos, Mass: mass}
}

// Finite reports whether position and velocity are free of NaN and Inf.
func (p *Particle) Finite() bool {
	return finite(p.Pos.X) && finite(p.Pos.Y) && finite(p.Vel.X) && finite(p.Vel.Y)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite reports whether every particle is free of NaN and Inf.
func Finite(ps []Particle) bool {
	for i := range ps {
		if !ps[i].Finite() {
			return false
		}
	}
	return true
}

// Store is an append-only particle buffer with a fixed capacity. Particles
// are never removed individually, only cleared in bulk.
type Store struct {
	items []Particle
	limit int
}

// NewStore allocates room for limit particles up front.
func NewStore(limit int) *Store {
	return &Store{items: make([]Particle, 0, limit), limit: limit}
}

func (s *Store) Len() int           { return len(s.items) }
func (s *Store) Cap() int           { return s.limit }
func (s *Store) Full() bool         { return len(s.items) >= s.limit }
func (s *Store) Clear()             { s.items = s.items[:0] }
func (s *Store) At(i int) *Particle { return &s.items[i] }

// Append adds p and reports false without inserting when the store is full.
func (s *Store) Append(p Particle) bool {
	if s.Full() {
		return false
	}
	s.items = append(s.items, p)
	return true
}

// Slice exposes the backing slice. Its length is Len.
func (s *Store) Slice() []Particle { return s.items }
