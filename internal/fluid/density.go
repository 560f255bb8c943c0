package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Neighbor is a cached reference to a particle within the smoothing radius.
type Neighbor struct {
	Index int
	R     float64
}

// computeDensity runs the neighbor and density pass against a snapshot of
// the particle array.
func (s *Solver) computeDensity() {
	ps := s.store.Slice()
	copy(s.snapshot, ps)
	s.parallel(len(ps), s.densityRange)
}

func (s *Solver) densityRange(start, end int) {
	ps := s.store.Slice()
	for i := start; i < end; i++ {
		s.densityAt(i, &ps[i])
	}
}

// densityAt writes only particle i and neighborhood i.
func (s *Solver) densityAt(i int, pi *Particle) {
	k := &s.k
	limit := s.params.MaxNeighbors
	ni := s.neighborhoods[i][:0]

	var dens, densNear float64
	count := 0
	for _, cell := range s.grid.Neighbors(pi.Cell) {
		for _, j := range cell {
			pj := &s.snapshot[j]
			dist2 := r2.Norm2(r2.Sub(pj.Pos, pi.Pos))
			if dist2 < k.eps2 || dist2 > k.h2 {
				continue
			}
			r := math.Sqrt(dist2)
			a := 1 - r/k.h
			a3 := a * a * a
			dens += pj.Mass * a3 * k.kern
			densNear += pj.Mass * a3 * a * k.kernNear
			count++
			// first found, not nearest found
			if len(ni) < limit {
				ni = append(ni, Neighbor{Index: j, R: r})
			}
		}
	}

	s.neighborhoods[i] = ni
	pi.Density = dens
	pi.NearDensity = densNear
	pi.Neighbors = count
	pi.Pressure = s.params.Stiffness * (dens - pi.Mass*s.params.RestDensity)
	pi.NearPressure = s.params.NearStiffness * densNear
}
