package fluid_test

import (
	"github.com/san-kum/fluidsim/internal/dynamo"
	"github.com/san-kum/fluidsim/internal/fluid"
	"gonum.org/v1/gonum/spatial/r2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type phaseRecorder struct {
	phases []string
}

func (r *phaseRecorder) StartPhase(name string) { r.phases = append(r.phases, name) }

var _ = Describe("Solver", func() {
	var s *fluid.Solver

	BeforeEach(func() {
		var err error
		s, err = fluid.New(fluid.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("starts empty at frame zero", func() {
			Expect(s.Count()).To(BeZero())
			Expect(s.Frame()).To(BeZero())
			Expect(s.Time()).To(BeZero())
		})

		It("sizes the grid from the smoothing radius", func() {
			cols, rows := s.Params().GridSize()
			Expect(s.Grid().Cols()).To(Equal(cols))
			Expect(s.Grid().Rows()).To(Equal(rows))
		})

		It("rejects domains narrower than three cells", func() {
			p := fluid.DefaultParams()
			p.Height = 0.4
			_, err := fluid.New(p)
			Expect(err).To(MatchError(dynamo.ErrGridTooSmall))
		})
	})

	Describe("walls", func() {
		It("orders left, bottom, right, top", func() {
			b := s.Boundaries()
			Expect(b[0].Normal).To(Equal(r2.Vec{X: 1}))
			Expect(b[1].Normal).To(Equal(r2.Vec{Y: 1}))
			Expect(b[2].Normal).To(Equal(r2.Vec{X: -1}))
			Expect(b[3].Normal).To(Equal(r2.Vec{Y: -1}))
		})

		It("measures depth inside each wall", func() {
			b := s.Boundaries()
			pos := r2.Vec{X: 2, Y: 3}
			Expect(b[0].Depth(pos)).To(BeNumerically("~", 2, 1e-12))
			Expect(b[1].Depth(pos)).To(BeNumerically("~", 3, 1e-12))
			Expect(b[2].Depth(pos)).To(BeNumerically("~", s.Params().Width-2, 1e-12))
			Expect(b[3].Depth(pos)).To(BeNumerically("~", s.Params().Height-3, 1e-12))
		})

		It("clamps depth outside a wall to zero", func() {
			Expect(s.Boundaries()[0].Depth(r2.Vec{X: -1, Y: 3})).To(BeZero())
		})
	})

	Describe("stepping", func() {
		BeforeEach(func() {
			s.InitDamBreak(400)
		})

		It("reports every phase of every substep in order", func() {
			rec := &phaseRecorder{}
			s.SetPhaseObserver(rec)
			s.Step()

			Expect(rec.phases).To(HaveLen(4 * s.Params().SolverSteps))
			Expect(rec.phases[:4]).To(Equal([]string{
				fluid.PhaseIntegrate, fluid.PhaseGrid, fluid.PhaseDensity, fluid.PhaseProject,
			}))
		})

		It("keeps particles finite and in insertion order", func() {
			before := s.Positions(nil)
			for range 10 {
				s.Step()
			}
			Expect(s.Count()).To(Equal(400))
			Expect(fluid.Finite(s.Particles())).To(BeTrue())

			// the top-left particle of the column stays left of the top-right one
			after := s.Positions(nil)
			Expect(after[0].X).To(BeNumerically("<", after[19].X))
			Expect(before[0]).NotTo(Equal(after[0]))
		})

		It("caches neighbor lists no longer than the cap", func() {
			s.Step()
			for i := range s.Count() {
				Expect(len(s.Neighbors(i))).To(BeNumerically("<=", s.Params().MaxNeighbors))
			}
		})

		It("restarts the clock on Clear", func() {
			s.Step()
			s.Clear()
			Expect(s.Frame()).To(BeZero())
			Expect(s.Count()).To(BeZero())
			Expect(s.InitBlock(100)).To(Equal(100))
		})
	})
})
