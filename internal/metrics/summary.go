package metrics

import (
	"math"
	"sort"

	"github.com/san-kum/fluidsim/internal/fluid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// InteriorNeighbors is the neighbor count from which a particle is treated
// as interior fluid rather than splash or free surface.
const InteriorNeighbors = 6

// Summary describes one frame of particle state.
type Summary struct {
	Count    int
	Interior int

	MeanDensity   float64 // over interior particles
	StdDensity    float64
	MedianDensity float64
	P95Density    float64

	MeanNeighbors float64
	KineticEnergy float64
	MaxSpeed      float64
}

// Summarize computes density statistics over particles with at least
// minNeighbors neighbors, and energy and speed over all particles.
func Summarize(ps []fluid.Particle, minNeighbors int) Summary {
	s := Summary{Count: len(ps)}
	if len(ps) == 0 {
		return s
	}

	speeds := make([]float64, len(ps))
	dens := make([]float64, 0, len(ps))
	neighbors := 0
	for i := range ps {
		p := &ps[i]
		v2 := r2.Norm2(p.Vel)
		speeds[i] = math.Sqrt(v2)
		s.KineticEnergy += 0.5 * p.Mass * v2
		neighbors += p.Neighbors
		if p.Neighbors >= minNeighbors {
			dens = append(dens, p.Density)
		}
	}
	s.MaxSpeed = floats.Max(speeds)
	s.MeanNeighbors = float64(neighbors) / float64(len(ps))

	s.Interior = len(dens)
	if len(dens) == 0 {
		return s
	}
	s.MeanDensity, s.StdDensity = stat.MeanStdDev(dens, nil)
	if len(dens) == 1 {
		s.StdDensity = 0
	}
	sort.Float64s(dens)
	s.MedianDensity = stat.Quantile(0.5, stat.Empirical, dens, nil)
	s.P95Density = stat.Quantile(0.95, stat.Empirical, dens, nil)
	return s
}
