// Package fluid implements a two-dimensional predictive-corrective SPH
// (PCISPH) solver.
//
// A [Solver] owns a [Store] of particles, a uniform [Grid] whose cells are
// one smoothing radius wide, and one bounded neighbor list per particle.
// Each call to [Solver.Step] advances one visible frame as a fixed number of
// substeps:
//
//  1. integrate: gravity into velocity, symplectic Euler position update
//  2. grid: rebuild the cell lists from scratch
//  3. density: neighbor discovery, density and near-density, pressures
//  4. project: pressure relaxation, surface tension, viscosity, walls
//
// Phases 1, 3 and 4 fan out across workers. Phases 3 and 4 read a snapshot
// of the particle array taken at phase entry and write only the slot they
// own, so no locks are needed.
//
// # Example
//
//	s, err := fluid.New(fluid.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	s.InitDamBreak(75 * 75)
//	for range 100 {
//	    s.Step()
//	}
//	pts := s.Positions(nil)
package fluid
