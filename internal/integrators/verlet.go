package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/dynamo"
)

// Verlet is a position Verlet integrator. It stores no state; the velocity
// lives in each particle's position history.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

// Step advances p by dt and clears its accumulated acceleration.
// A step with dt <= 0 moves nothing: no time passes, so neither the
// implicit velocity nor the acceleration is applied.
func (v *Verlet) Step(p *dynamo.Particle, dt float64) {
	if dt <= 0 {
		p.Acc = r2.Vec{}
		return
	}
	vel := r2.Sub(p.Pos, p.Prev)
	p.Prev = p.Pos
	p.Pos = r2.Add(p.Pos, r2.Add(vel, r2.Scale(dt*dt, p.Acc)))
	p.Acc = r2.Vec{}
}

// StepAll advances every particle in ps.
func (v *Verlet) StepAll(ps []dynamo.Particle, dt float64) {
	for i := range ps {
		v.Step(&ps[i], dt)
	}
}

// Accelerate adds a into the particle's accumulated acceleration.
func Accelerate(p *dynamo.Particle, a r2.Vec) {
	p.Acc = r2.Add(p.Acc, a)
}
