package constraints_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/constraints"
	"github.com/san-kum/verletsim/internal/dynamo"
	"github.com/san-kum/verletsim/internal/integrators"
)

var _ = Describe("ClampToBoundary", func() {
	var b dynamo.Boundary

	BeforeEach(func() {
		b = dynamo.Boundary{Center: r2.Vec{X: 500, Y: 500}, Radius: 450}
	})

	It("pulls an escaped particle back to the inner wall", func() {
		p := at(1000, 500, 20)

		Expect(constraints.ClampToBoundary(&p, b)).To(BeTrue())
		Expect(r2.Norm(r2.Sub(p.Pos, b.Center))).To(BeNumerically("~", 430, eps))
		Expect(p.Pos.Y).To(BeNumerically("~", 500, eps))
	})

	It("keeps the clamped position through a zero-length integration step", func() {
		p := at(1000, 500, 20)
		constraints.ClampToBoundary(&p, b)
		integrators.NewVerlet().Step(&p, 0)

		Expect(r2.Norm(r2.Sub(p.Pos, b.Center))).To(BeNumerically("~", 430, eps))
	})

	It("leaves the previous position alone", func() {
		p := at(1000, 500, 20)
		constraints.ClampToBoundary(&p, b)

		Expect(p.Prev).To(Equal(r2.Vec{X: 1000, Y: 500}))
	})

	It("ignores particles that are inside", func() {
		p := at(600, 450, 20)

		Expect(constraints.ClampToBoundary(&p, b)).To(BeFalse())
		Expect(p.Pos).To(Equal(r2.Vec{X: 600, Y: 450}))
	})

	It("keeps the direction of escape", func() {
		p := at(0, 0, 5)
		constraints.ClampToBoundary(&p, b)

		Expect(p.Pos.X).To(BeNumerically("~", p.Pos.Y, eps))
		Expect(p.Pos.X).To(BeNumerically("~", 500-445/math.Sqrt2, 1e-6))
	})

	It("uses the fallback axis for a particle larger than the boundary sitting at its center", func() {
		small := dynamo.Boundary{Center: r2.Vec{X: 1, Y: 1}, Radius: 5}
		p := at(1, 1, 8)

		Expect(constraints.ClampToBoundary(&p, small)).To(BeTrue())
		Expect(p.IsValid()).To(BeTrue())
		Expect(p.Pos).To(Equal(r2.Vec{X: -2, Y: 1}))
	})

	It("contains every particle after one pass", func() {
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 500; i++ {
			p := at(rng.Float64()*2000-500, rng.Float64()*2000-500, 1+rng.Float64()*29)
			constraints.ClampToBoundary(&p, b)
			Expect(b.Contains(&p, 1e-9)).To(BeTrue())
		}
	})
})
