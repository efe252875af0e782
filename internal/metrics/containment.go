package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/constraints"
	"github.com/san-kum/verletsim/internal/sim"
)

// BoundaryViolation tracks the furthest any particle has been seen past the
// inner wall at the end of a frame. Particles are clamped before they are
// integrated, so small positive values are expected.
type BoundaryViolation struct {
	name  string
	worst float64
}

func NewBoundaryViolation() *BoundaryViolation {
	return &BoundaryViolation{name: "boundary_violation"}
}

func (b *BoundaryViolation) Name() string { return b.name }

func (b *BoundaryViolation) Observe(f *sim.Frame) {
	for i := range f.Particles {
		p := &f.Particles[i]
		over := r2.Norm(r2.Sub(p.Pos, f.Boundary.Center)) - (f.Boundary.Radius - p.Radius)
		if over > b.worst {
			b.worst = over
		}
	}
}

func (b *BoundaryViolation) Value() float64 { return b.worst }
func (b *BoundaryViolation) Reset()         { b.worst = 0 }

// Overlap tracks the deepest residual pair penetration seen at the end of a
// frame. Under a boundary pile some overlap remains after the solver pass.
// Every observation is O(n²).
type Overlap struct {
	name  string
	worst float64
	last  float64
}

func NewOverlap() *Overlap {
	return &Overlap{name: "max_overlap"}
}

func (o *Overlap) Name() string { return o.name }

func (o *Overlap) Observe(f *sim.Frame) {
	o.last = constraints.MaxOverlap(f.Particles)
	if o.last > o.worst {
		o.worst = o.last
	}
}

func (o *Overlap) Value() float64 { return o.worst }

// Last returns the overlap of the most recent frame.
func (o *Overlap) Last() float64 { return o.last }

func (o *Overlap) Reset() {
	o.worst = 0
	o.last = 0
}
