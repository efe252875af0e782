package constraints_test

import (
	"image/color"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/constraints"
	"github.com/san-kum/verletsim/internal/dynamo"
)

const eps = 1e-9

func at(x, y, r float64) dynamo.Particle {
	return dynamo.NewParticle(r2.Vec{X: x, Y: y}, r, color.RGBA{A: 255})
}

func distance(a, b dynamo.Particle) float64 {
	return r2.Norm(r2.Sub(a.Pos, b.Pos))
}

var _ = Describe("Solver", func() {
	Context("with the equal-split policy and a full response", func() {
		var solver *constraints.Solver

		BeforeEach(func() {
			solver = constraints.NewSolver(constraints.EqualSplit, 1.0)
		})

		It("separates an overlapping pair to exactly the sum of radii", func() {
			ps := []dynamo.Particle{at(0, 0, 10), at(15, 0, 10)}

			Expect(solver.Solve(ps)).To(Equal(1))
			Expect(distance(ps[0], ps[1])).To(BeNumerically("~", 20, eps))
			Expect(ps[0].Pos.X).To(BeNumerically("~", -2.5, eps))
			Expect(ps[1].Pos.X).To(BeNumerically("~", 17.5, eps))
			Expect(ps[0].Pos.Y).To(BeZero())
			Expect(ps[1].Pos.Y).To(BeZero())
		})

		It("leaves separated pairs untouched", func() {
			ps := []dynamo.Particle{at(0, 0, 10), at(20, 0, 10), at(100, 100, 5)}

			Expect(solver.Solve(ps)).To(Equal(0))
			Expect(ps[0].Pos).To(Equal(r2.Vec{}))
			Expect(ps[1].Pos).To(Equal(r2.Vec{X: 20}))
		})

		It("separates coincident particles along the fallback axis", func() {
			ps := []dynamo.Particle{at(5, 5, 1), at(5, 5, 1)}

			Expect(solver.Solve(ps)).To(Equal(1))
			for _, p := range ps {
				Expect(p.IsValid()).To(BeTrue())
			}
			Expect(ps[0].Pos).To(Equal(r2.Vec{X: 6, Y: 5}))
			Expect(ps[1].Pos).To(Equal(r2.Vec{X: 4, Y: 5}))
		})

		It("resolves disjoint overlapping pairs in a single pass", func() {
			ps := []dynamo.Particle{
				at(0, 0, 4), at(5, 0, 4),
				at(100, 0, 7), at(100, 10, 7),
				at(-100, -100, 2), at(-99, -99, 3),
			}

			Expect(solver.Solve(ps)).To(Equal(3))
			Expect(constraints.MaxOverlap(ps)).To(BeNumerically("<=", eps))
		})

		It("does not touch the previous positions", func() {
			ps := []dynamo.Particle{at(0, 0, 10), at(15, 0, 10)}
			solver.Solve(ps)

			Expect(ps[0].Prev).To(Equal(r2.Vec{}))
			Expect(ps[1].Prev).To(Equal(r2.Vec{X: 15}))
		})
	})

	Context("with the mass-weighted policy", func() {
		It("moves the smaller particle further", func() {
			solver := constraints.NewSolver(constraints.MassWeighted, constraints.DefaultResponse)
			ps := []dynamo.Particle{at(0, 0, 10), at(30, 0, 30)}

			Expect(solver.Solve(ps)).To(Equal(1))

			// delta = 0.5 * 0.75 * (30 - 40) = -3.75
			Expect(ps[0].Pos.X).To(BeNumerically("~", -3.75*30/40, eps))
			Expect(ps[1].Pos.X).To(BeNumerically("~", 30+3.75*10/40, eps))
			Expect(distance(ps[0], ps[1])).To(BeNumerically("~", 33.75, eps))
		})

		It("converges over repeated passes", func() {
			solver := constraints.NewSolver(constraints.MassWeighted, constraints.DefaultResponse)
			ps := []dynamo.Particle{at(0, 0, 10), at(15, 0, 10), at(30, 1, 10), at(10, 12, 6)}

			for i := 0; i < 300; i++ {
				solver.Solve(ps)
			}

			Expect(constraints.MaxOverlap(ps)).To(BeNumerically("<", 1e-6))
		})
	})

	It("treats touching particles as resolved", func() {
		solver := constraints.NewSolver(constraints.EqualSplit, 1.0)
		ps := []dynamo.Particle{at(0, 0, 10), at(20, 0, 10)}

		Expect(solver.Solve(ps)).To(Equal(0))
	})

	It("handles an empty and a single-particle slice", func() {
		solver := constraints.NewSolver(constraints.MassWeighted, 0.5)
		Expect(solver.Solve(nil)).To(Equal(0))
		Expect(solver.Solve([]dynamo.Particle{at(1, 1, 1)})).To(Equal(0))
	})
})

var _ = Describe("MaxOverlap", func() {
	It("reports the deepest penetration", func() {
		ps := []dynamo.Particle{at(0, 0, 10), at(15, 0, 10), at(100, 0, 10), at(110, 0, 10)}
		Expect(constraints.MaxOverlap(ps)).To(BeNumerically("~", 10, eps))
	})

	It("is zero for separated particles", func() {
		ps := []dynamo.Particle{at(0, 0, 1), at(math.Sqrt2*10, 0, 1)}
		Expect(constraints.MaxOverlap(ps)).To(BeZero())
	})
})
