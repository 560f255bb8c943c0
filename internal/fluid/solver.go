package fluid

import (
	"fmt"

	"github.com/san-kum/fluidsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Phase names reported to a PhaseObserver.
const (
	PhaseIntegrate = "integrate"
	PhaseGrid      = "grid"
	PhaseDensity   = "density"
	PhaseProject   = "project"
)

// minChunk is the smallest per-worker range; below it a phase runs inline.
const minChunk = 256

// PhaseObserver is told when each substep enters a new phase.
type PhaseObserver interface {
	StartPhase(name string)
}

// Solver advances a particle population with the PCISPH scheme.
//
// A Solver is not safe for concurrent use; it parallelizes internally.
type Solver struct {
	params Params
	k      kernels
	bounds [4]Boundary
	grid   *Grid

	store         *Store
	snapshot      []Particle
	neighborhoods [][]Neighbor

	observer PhaseObserver
	frames   int
}

// New validates p and allocates a solver with room for p.MaxParticles.
func New(p Params) (*Solver, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("fluid: %w", err)
	}
	grid, err := NewGrid(p.Width, p.Height, p.SmoothingRadius)
	if err != nil {
		return nil, fmt.Errorf("fluid: %w", err)
	}
	return &Solver{
		params:        p,
		k:             newKernels(p),
		bounds:        Boundaries(p.Width, p.Height),
		grid:          grid,
		store:         NewStore(p.MaxParticles),
		snapshot:      make([]Particle, 0, p.MaxParticles),
		neighborhoods: make([][]Neighbor, 0, p.MaxParticles),
	}, nil
}

func (s *Solver) Params() Params             { return s.params }
func (s *Solver) Boundaries() [4]Boundary    { return s.bounds }
func (s *Solver) Grid() *Grid                { return s.grid }
func (s *Solver) Count() int                 { return s.store.Len() }
func (s *Solver) Frame() int                 { return s.frames }
func (s *Solver) Neighbors(i int) []Neighbor { return s.neighborhoods[i] }

// Time is the simulated time in seconds since the last Clear.
func (s *Solver) Time() float64 {
	return float64(s.frames) * s.params.FrameTime
}

// SetPhaseObserver installs o; nil disables phase reporting.
func (s *Solver) SetPhaseObserver(o PhaseObserver) {
	s.observer = o
}

// Particles exposes the live particle slice in insertion order. Callers must
// not modify it, and it is only valid until the next mutating call.
func (s *Solver) Particles() []Particle {
	return s.store.Slice()
}

// Positions appends every particle position to dst[:0] and returns it.
func (s *Solver) Positions(dst []r2.Vec) []r2.Vec {
	dst = dst[:0]
	for _, p := range s.store.Slice() {
		dst = append(dst, p.Pos)
	}
	return dst
}

// Step advances the simulation by one frame of SolverSteps substeps.
func (s *Solver) Step() {
	for range s.params.SolverSteps {
		s.substep()
	}
	s.frames++
}

func (s *Solver) substep() {
	s.phase(PhaseIntegrate)
	s.integrate()

	s.phase(PhaseGrid)
	s.grid.Rebuild(s.store.Slice())

	s.phase(PhaseDensity)
	s.computeDensity()

	s.phase(PhaseProject)
	s.projectCorrect()
}

func (s *Solver) phase(name string) {
	if s.observer != nil {
		s.observer.StartPhase(name)
	}
}

// integrate applies gravity and advances positions (symplectic Euler).
func (s *Solver) integrate() {
	ps := s.store.Slice()
	g := r2.Scale(s.k.dt, s.params.Gravity)
	dt := s.k.dt
	s.parallel(len(ps), func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			p.Vel = r2.Add(p.Vel, g)
			p.PrevPos = p.Pos
			p.Pos = r2.Add(p.Pos, r2.Scale(dt, p.Vel))
		}
	})
}

func (s *Solver) parallel(n int, fn func(start, end int)) {
	dynamo.ParallelFor(n, minChunk, s.params.Workers, fn)
}
