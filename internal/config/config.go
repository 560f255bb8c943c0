package config

import (
	"fmt"
	"os"

	"github.com/san-kum/fluidsim/internal/fluid"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFrames      = 400
	DefaultSampleEvery = 10
)

type Config struct {
	Name      string          `yaml:"name,omitempty"`
	Domain    DomainConfig    `yaml:"domain"`
	Particles ParticlesConfig `yaml:"particles"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Solver    SolverConfig    `yaml:"solver"`
	Run       RunConfig       `yaml:"run"`
}

type DomainConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ParticlesConfig struct {
	Radius float64 `yaml:"radius"`
	Max    int     `yaml:"max"`
	Dam    int     `yaml:"dam"`
	Block  int     `yaml:"block"`
	Mass   float64 `yaml:"mass"`
}

type PhysicsConfig struct {
	SmoothingRadius    float64    `yaml:"smoothing_radius"`
	RestDensity        float64    `yaml:"rest_density"`
	Stiffness          float64    `yaml:"stiffness"`
	NearStiffness      float64    `yaml:"near_stiffness"`
	SurfaceTension     float64    `yaml:"surface_tension"`
	LinearViscosity    float64    `yaml:"linear_viscosity"`
	QuadraticViscosity float64    `yaml:"quadratic_viscosity"`
	Gravity            [2]float64 `yaml:"gravity,flow"`
}

type SolverConfig struct {
	Steps        int     `yaml:"steps"`
	FrameTime    float64 `yaml:"frame_time"`
	MaxNeighbors int     `yaml:"max_neighbors"`
	Epsilon      float64 `yaml:"epsilon"`
	Workers      int     `yaml:"workers"`
}

// RunConfig controls headless runs. Blocks, if non-empty, lists the frames
// on which a block of Particles.Block is dropped.
type RunConfig struct {
	Frames      int   `yaml:"frames"`
	SampleEvery int   `yaml:"sample_every"`
	Validate    bool  `yaml:"validate"`
	Blocks      []int `yaml:"blocks,omitempty,flow"`
}

func DefaultConfig() *Config {
	p := fluid.DefaultParams()
	return &Config{
		Name: "dam_break",
		Domain: DomainConfig{
			Width:  p.Width,
			Height: p.Height,
		},
		Particles: ParticlesConfig{
			Radius: p.ParticleRadius,
			Max:    p.MaxParticles,
			Dam:    p.DamParticles,
			Block:  p.BlockParticles,
			Mass:   p.Mass,
		},
		Physics: PhysicsConfig{
			SmoothingRadius:    p.SmoothingRadius,
			RestDensity:        p.RestDensity,
			Stiffness:          p.Stiffness,
			NearStiffness:      p.NearStiffness,
			SurfaceTension:     p.SurfaceTension,
			LinearViscosity:    p.LinearViscosity,
			QuadraticViscosity: p.QuadraticViscosity,
			Gravity:            [2]float64{p.Gravity.X, p.Gravity.Y},
		},
		Solver: SolverConfig{
			Steps:        p.SolverSteps,
			FrameTime:    p.FrameTime,
			MaxNeighbors: p.MaxNeighbors,
			Epsilon:      p.Epsilon,
			Workers:      p.Workers,
		},
		Run: RunConfig{
			Frames:      DefaultFrames,
			SampleEvery: DefaultSampleEvery,
			Validate:    true,
		},
	}
}

// Params converts the configuration into solver parameters.
func (c *Config) Params() fluid.Params {
	return fluid.Params{
		Width:              c.Domain.Width,
		Height:             c.Domain.Height,
		ParticleRadius:     c.Particles.Radius,
		SmoothingRadius:    c.Physics.SmoothingRadius,
		Mass:               c.Particles.Mass,
		RestDensity:        c.Physics.RestDensity,
		Stiffness:          c.Physics.Stiffness,
		NearStiffness:      c.Physics.NearStiffness,
		SurfaceTension:     c.Physics.SurfaceTension,
		LinearViscosity:    c.Physics.LinearViscosity,
		QuadraticViscosity: c.Physics.QuadraticViscosity,
		Gravity:            r2.Vec{X: c.Physics.Gravity[0], Y: c.Physics.Gravity[1]},
		SolverSteps:        c.Solver.Steps,
		FrameTime:          c.Solver.FrameTime,
		MaxParticles:       c.Particles.Max,
		MaxNeighbors:       c.Solver.MaxNeighbors,
		Epsilon:            c.Solver.Epsilon,
		DamParticles:       c.Particles.Dam,
		BlockParticles:     c.Particles.Block,
		Workers:            c.Solver.Workers,
	}
}

// Validate checks the solver parameters and the run section.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Run.Frames < 0 || c.Run.SampleEvery < 0 {
		return fmt.Errorf("run frames and sample_every must not be negative")
	}
	return nil
}

// Clone returns a deep copy so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Run.Blocks = append([]int(nil), c.Run.Blocks...)
	return &out
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
