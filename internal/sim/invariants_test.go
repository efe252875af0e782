package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/constraints"
	"github.com/san-kum/verletsim/internal/sim"
)

var _ = Describe("Simulator", func() {
	var (
		cfg sim.Config
		s   *sim.Simulator
	)

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
		cfg.Capacity = 120
		cfg.Seed = 21
	})

	JustBeforeEach(func() {
		var err error
		s, err = sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("never loses particles or occupied area", func() {
		prevActive, prevArea := 0, 0.0
		for i := 0; i < 300; i++ {
			s.Step(1.0 / 60)
			Expect(s.Stats().Active).To(BeNumerically(">=", prevActive))
			Expect(s.Occupied()).To(BeNumerically(">=", prevArea))
			prevActive, prevArea = s.Stats().Active, s.Occupied()
		}
		Expect(prevActive).To(Equal(120))
	})

	It("keeps every particle within one sub-step of the boundary", func() {
		b := s.Boundary()
		for i := 0; i < 400; i++ {
			s.Step(1.0 / 60)

			for _, p := range s.Particles() {
				// Prev is the clamped position of the last sub-step, so the
				// only overshoot left is that sub-step's own motion.
				clamped := p
				clamped.Pos = p.Prev
				Expect(b.Contains(&clamped, 1e-9)).To(BeTrue(), "clamped position %v outside", p.Prev)

				motion := r2.Norm(r2.Sub(p.Pos, p.Prev))
				Expect(b.Contains(&p, motion+1e-9)).To(BeTrue(), "particle at %v escaped by more than %v", p.Pos, motion)
			}
		}
		Expect(s.Valid()).To(BeTrue())
	})

	It("is deterministic for a given seed", func() {
		other, err := sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 120; i++ {
			s.Step(1.0 / 60)
			other.Step(1.0 / 60)
		}

		Expect(other.Snapshot()).To(Equal(s.Snapshot()))
	})

	It("exposes a snapshot that does not alias the arena", func() {
		s.Step(1.0 / 60)
		snap := s.Snapshot()
		snap[0].Pos = r2.Vec{X: -1, Y: -1}

		Expect(s.Particles()[0].Pos).NotTo(Equal(r2.Vec{X: -1, Y: -1}))
	})

	Context("at the fill ceiling", func() {
		BeforeEach(func() {
			cfg.Capacity = 5000
			cfg.Spawn.RadiusMin, cfg.Spawn.RadiusMax = 40, 40
			cfg.Spawn.FillCeiling = 10
		})

		It("stops spawning once the ceiling is crossed", func() {
			for i := 0; i < 100; i++ {
				s.Step(1.0 / 60)
			}

			// 10% of a 450 boundary holds 12.66 discs of radius 40
			Expect(s.Stats().Active).To(Equal(13))
			Expect(s.Stats().FillPercent).To(BeNumerically(">=", 10))
		})
	})

	Context("sub-step pipeline", func() {
		BeforeEach(func() {
			cfg.Gravity = r2.Vec{}
			cfg.Spawn.RadiusMin, cfg.Spawn.RadiusMax = 20, 20
		})

		Context("with one sub-step and a spawn outside the wall", func() {
			BeforeEach(func() {
				cfg.SubSteps = 1
				cfg.Spawn.Offset = r2.Vec{X: 500}
			})

			It("clamps before integrating", func() {
				s.Step(1.0 / 60)

				// spawned at 1000, clamped to 930, then the implicit
				// velocity of -70 carries it to 860
				p := s.Particles()[0]
				Expect(p.Pos.X).To(BeNumerically("~", 860, 1e-9))
				Expect(p.Pos.Y).To(BeNumerically("~", 500, 1e-9))
				Expect(p.Prev.X).To(BeNumerically("~", 930, 1e-9))
			})
		})

		Context("with two sub-steps and a coincident pair", func() {
			BeforeEach(func() {
				cfg.SubSteps = 2
				cfg.Spawn.Offset = r2.Vec{}
			})

			It("resolves collisions once per sub-step", func() {
				s.Step(1.0 / 60)
				Expect(s.Stats().Contacts).To(Equal(0))

				// the second disc lands on the first; a 0.75 response leaves
				// them 15 apart after the first pass and 30 apart before the
				// second, so both passes see the pair
				s.Step(1.0 / 60)
				Expect(s.Stats().Active).To(Equal(2))
				Expect(s.Stats().Contacts).To(Equal(2))
			})
		})
	})

	Context("with a single sub-step and equal split", func() {
		BeforeEach(func() {
			cfg.SubSteps = 1
			cfg.Policy = constraints.EqualSplit
			cfg.Response = 1
		})

		It("still runs to capacity", func() {
			for i := 0; i < 200; i++ {
				s.Step(1.0 / 60)
			}
			Expect(s.Stats().Active).To(Equal(120))
			Expect(s.Valid()).To(BeTrue())
		})
	})
})
