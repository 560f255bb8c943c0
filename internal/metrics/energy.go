package metrics

import (
	"math"

	"github.com/san-kum/fluidsim/internal/fluid"
	"gonum.org/v1/gonum/spatial/r2"
)

// KineticEnergy reports the total kinetic energy of the last observed frame.
type KineticEnergy struct {
	name   string
	energy float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(ps []fluid.Particle, t float64) {
	k.energy = 0
	for i := range ps {
		k.energy += 0.5 * ps[i].Mass * r2.Norm2(ps[i].Vel)
	}
}

func (k *KineticEnergy) Value() float64 { return k.energy }
func (k *KineticEnergy) Reset()         { k.energy = 0 }

// MaxSpeed is the fastest particle speed seen during a run.
type MaxSpeed struct {
	name  string
	speed float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(ps []fluid.Particle, t float64) {
	for i := range ps {
		m.speed = math.Max(m.speed, r2.Norm(ps[i].Vel))
	}
}

func (m *MaxSpeed) Value() float64 { return m.speed }
func (m *MaxSpeed) Reset()         { m.speed = 0 }

// Containment is the furthest any particle has been seen outside the
// domain walls. Zero means every particle stayed inside.
type Containment struct {
	name   string
	bounds [4]fluid.Boundary
	escape float64
}

func NewContainment(bounds [4]fluid.Boundary) *Containment {
	return &Containment{name: "containment", bounds: bounds}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(ps []fluid.Particle, t float64) {
	for i := range ps {
		for _, b := range c.bounds {
			if out := b.Offset - r2.Dot(ps[i].Pos, b.Normal); out > c.escape {
				c.escape = out
			}
		}
	}
}

func (c *Containment) Value() float64 { return c.escape }
func (c *Containment) Reset()         { c.escape = 0 }
