package metrics

import (
	"math"

	"github.com/san-kum/fluidsim/internal/fluid"
)

// MeanDensity averages the interior mean density over every observed frame.
type MeanDensity struct {
	name         string
	minNeighbors int
	total        float64
	samples      int
}

func NewMeanDensity(minNeighbors int) *MeanDensity {
	return &MeanDensity{name: "mean_density", minNeighbors: minNeighbors}
}

func (m *MeanDensity) Name() string { return m.name }

func (m *MeanDensity) Observe(ps []fluid.Particle, t float64) {
	mean, ok := interiorMean(ps, m.minNeighbors)
	if !ok {
		return
	}
	m.total += mean
	m.samples++
}

func (m *MeanDensity) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanDensity) Reset() {
	m.total = 0
	m.samples = 0
}

// DensityDeviation tracks the largest relative gap between the interior
// mean density and the rest density seen during a run.
type DensityDeviation struct {
	name         string
	rest         float64
	minNeighbors int
	maxDev       float64
}

func NewDensityDeviation(restDensity float64, minNeighbors int) *DensityDeviation {
	return &DensityDeviation{name: "density_deviation", rest: restDensity, minNeighbors: minNeighbors}
}

func (d *DensityDeviation) Name() string { return d.name }

func (d *DensityDeviation) Observe(ps []fluid.Particle, t float64) {
	mean, ok := interiorMean(ps, d.minNeighbors)
	if !ok || d.rest == 0 {
		return
	}
	d.maxDev = math.Max(d.maxDev, math.Abs(mean-d.rest)/d.rest)
}

func (d *DensityDeviation) Value() float64 { return d.maxDev }
func (d *DensityDeviation) Reset()         { d.maxDev = 0 }

func interiorMean(ps []fluid.Particle, minNeighbors int) (float64, bool) {
	var sum float64
	n := 0
	for i := range ps {
		if ps[i].Neighbors >= minNeighbors {
			sum += ps[i].Density
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
