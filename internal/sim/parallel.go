package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/fluidsim/internal/fluid"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs several independently built solvers with the same
// parameters and scene concurrently.
type Ensemble struct {
	params  fluid.Params
	numRuns int
	setup   func(*fluid.Solver)
}

// NewEnsemble prepares numRuns runs. setup places the initial scene on each
// fresh solver; nil means the default dam break.
func NewEnsemble(p fluid.Params, numRuns int, setup func(*fluid.Solver)) *Ensemble {
	if setup == nil {
		setup = (*fluid.Solver).Reset
	}
	return &Ensemble{params: p, numRuns: numRuns, setup: setup}
}

// Run returns one result per run in run order. The first failing run
// cancels the others.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			s, err := fluid.New(e.params)
			if err != nil {
				return err
			}
			e.setup(s)

			r := New(s)
			r.AddDefaultMetrics()
			res, err := r.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Divergence compares final positions against the first result. It returns
// the index of the first run and particle that differ, or -1, -1.
func Divergence(results []*Result) (run, particle int) {
	if len(results) < 2 {
		return -1, -1
	}
	ref := results[0].Final
	for r, res := range results[1:] {
		if len(res.Final) != len(ref) {
			return r + 1, min(len(res.Final), len(ref))
		}
		for i := range ref {
			if res.Final[i] != ref[i] {
				return r + 1, i
			}
		}
	}
	return -1, -1
}
