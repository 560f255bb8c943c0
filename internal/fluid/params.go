package fluid

import (
	"fmt"
	"math"

	"github.com/san-kum/fluidsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultWidth          = 20.0
	DefaultHeight         = 720.0 * DefaultWidth / 1024.0
	DefaultParticleRadius = 0.03
	DefaultMaxParticles   = 30_000
	DefaultMaxNeighbors   = 64
	DefaultSolverSteps    = 10
	DefaultFrameTime      = 1.0 / 40.0
	DefaultDamParticles   = 75 * 75
	DefaultBlockParticles = 500
)

// Params holds every physical and numerical constant of a solver.
type Params struct {
	// Domain extents in world units. Walls sit at 0 and at Width/Height.
	Width, Height float64

	ParticleRadius  float64
	SmoothingRadius float64 // H; also the grid cell size
	Mass            float64 // mass of newly placed particles

	RestDensity        float64
	Stiffness          float64
	NearStiffness      float64
	SurfaceTension     float64
	LinearViscosity    float64
	QuadraticViscosity float64
	Gravity            r2.Vec

	SolverSteps int     // substeps per frame
	FrameTime   float64 // simulated seconds per frame; dt = FrameTime / SolverSteps

	MaxParticles int
	MaxNeighbors int
	Epsilon      float64 // minimum accepted neighbor separation

	DamParticles   int // size of the dam placed by Reset
	BlockParticles int

	Workers int // 0 = GOMAXPROCS
}

// DefaultParams returns the reference tuning: a 20 x 14.0625 domain, H six
// particle radii wide, rest density 45 and ten substeps per 1/40 s frame.
func DefaultParams() Params {
	return Params{
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		ParticleRadius:     DefaultParticleRadius,
		SmoothingRadius:    6 * DefaultParticleRadius,
		Mass:               1.0,
		RestDensity:        45.0,
		Stiffness:          0.08,
		NearStiffness:      0.1,
		SurfaceTension:     0.0001,
		LinearViscosity:    0.25,
		QuadraticViscosity: 0.5,
		Gravity:            r2.Vec{X: 0, Y: -9.81},
		SolverSteps:        DefaultSolverSteps,
		FrameTime:          DefaultFrameTime,
		MaxParticles:       DefaultMaxParticles,
		MaxNeighbors:       DefaultMaxNeighbors,
		Epsilon:            1e-7,
		DamParticles:       DefaultDamParticles,
		BlockParticles:     DefaultBlockParticles,
	}
}

// Dt is the substep length.
func (p Params) Dt() float64 {
	return p.FrameTime / float64(p.SolverSteps)
}

// GridSize returns the number of cells per axis.
func (p Params) GridSize() (cols, rows int) {
	return int(p.Width / p.SmoothingRadius), int(p.Height / p.SmoothingRadius)
}

// Validate reports configuration errors that would otherwise surface as
// out-of-range grid access or division by zero during a substep.
func (p Params) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"width", p.Width},
		{"height", p.Height},
		{"particle radius", p.ParticleRadius},
		{"smoothing radius", p.SmoothingRadius},
		{"mass", p.Mass},
		{"rest density", p.RestDensity},
		{"frame time", p.FrameTime},
		{"epsilon", p.Epsilon},
	}
	for _, v := range positive {
		if !(v.value > 0) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%s must be positive, got %g: %w", v.name, v.value, dynamo.ErrParameterBounds)
		}
	}
	if p.Epsilon >= p.SmoothingRadius {
		return fmt.Errorf("epsilon %g must be below smoothing radius %g: %w", p.Epsilon, p.SmoothingRadius, dynamo.ErrParameterBounds)
	}
	if p.SolverSteps < 1 {
		return fmt.Errorf("solver steps must be at least 1, got %d: %w", p.SolverSteps, dynamo.ErrParameterBounds)
	}
	if p.MaxParticles < 1 {
		return fmt.Errorf("max particles must be at least 1, got %d: %w", p.MaxParticles, dynamo.ErrParameterBounds)
	}
	if p.MaxNeighbors < 1 {
		return fmt.Errorf("max neighbors must be at least 1, got %d: %w", p.MaxNeighbors, dynamo.ErrParameterBounds)
	}
	if p.DamParticles < 0 || p.BlockParticles < 0 {
		return fmt.Errorf("scene sizes must not be negative: %w", dynamo.ErrParameterBounds)
	}

	cols, rows := p.GridSize()
	if cols < 3 || rows < 3 {
		return fmt.Errorf("%.4g x %.4g domain with H=%.4g gives %dx%d cells: %w",
			p.Width, p.Height, p.SmoothingRadius, cols, rows, dynamo.ErrGridTooSmall)
	}
	return nil
}

// kernels holds the derived constants used by the density and projection
// passes.
type kernels struct {
	h, h2    float64
	eps2     float64
	dt, dt2  float64
	kern     float64 // 20 / (2 pi H^2)
	kernNear float64 // 30 / (2 pi H^2)
}

func newKernels(p Params) kernels {
	h := p.SmoothingRadius
	dt := p.Dt()
	return kernels{
		h:        h,
		h2:       h * h,
		eps2:     p.Epsilon * p.Epsilon,
		dt:       dt,
		dt2:      dt * dt,
		kern:     20 / (2 * math.Pi * h * h),
		kernNear: 30 / (2 * math.Pi * h * h),
	}
}
