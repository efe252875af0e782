package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/sim"
)

// KineticEnergy averages the total kinetic energy per frame. Mass is taken
// as radius², velocity as the implicit Verlet displacement over one sub-step.
type KineticEnergy struct {
	name    string
	total   float64
	last    float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f *sim.Frame) {
	e.last = FrameEnergy(f)
	e.total += e.last
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last returns the energy of the most recent frame.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.last = 0
	e.samples = 0
}

// FrameEnergy returns Σ ½·r²·|v|² for the particles of f.
func FrameEnergy(f *sim.Frame) float64 {
	if f.SubDt <= 0 {
		return 0
	}
	sum := 0.0
	for i := range f.Particles {
		p := &f.Particles[i]
		v := r2.Scale(1/f.SubDt, p.Velocity())
		sum += 0.5 * p.Radius * p.Radius * r2.Norm2(v)
	}
	return sum
}
