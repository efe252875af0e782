package dynamo

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particle is a circular body integrated with position Verlet.
// Velocity is implicit: Pos - Prev.
type Particle struct {
	Pos    r2.Vec
	Prev   r2.Vec
	Acc    r2.Vec
	Radius float64
	Color  color.RGBA
	// Phase is the simulation time the particle was spawned at.
	Phase float64
}

// NewParticle returns a particle at rest at pos.
func NewParticle(pos r2.Vec, radius float64, c color.RGBA) Particle {
	return Particle{Pos: pos, Prev: pos, Radius: radius, Color: c}
}

// Velocity returns the implicit per-step displacement.
func (p *Particle) Velocity() r2.Vec {
	return r2.Sub(p.Pos, p.Prev)
}

// Area returns the disc area of the particle.
func (p *Particle) Area() float64 {
	return math.Pi * p.Radius * p.Radius
}

// IsValid reports whether the particle state is free of NaN and Inf.
func (p *Particle) IsValid() bool {
	for _, v := range [...]float64{p.Pos.X, p.Pos.Y, p.Prev.X, p.Prev.Y, p.Acc.X, p.Acc.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Boundary is the circular container.
type Boundary struct {
	Center r2.Vec
	Radius float64
}

func (b Boundary) Area() float64 {
	return math.Pi * b.Radius * b.Radius
}

// Contains reports whether p lies fully inside b within tol.
func (b Boundary) Contains(p *Particle, tol float64) bool {
	return r2.Norm(r2.Sub(p.Pos, b.Center)) <= b.Radius-p.Radius+tol
}

// ParticleSet is a fixed-capacity arena. Only the first Len slots are live;
// particles are appended at the end and never removed or reordered.
type ParticleSet struct {
	slots []Particle
	n     int
}

func NewParticleSet(capacity int) *ParticleSet {
	if capacity < 0 {
		capacity = 0
	}
	return &ParticleSet{slots: make([]Particle, capacity)}
}

func (s *ParticleSet) Len() int { return s.n }
func (s *ParticleSet) Cap() int { return len(s.slots) }

// Full reports whether no slot is left.
func (s *ParticleSet) Full() bool { return s.n >= len(s.slots) }

// Append stores p in the next free slot. It returns false, leaving the set
// untouched, when the set is full.
func (s *ParticleSet) Append(p Particle) bool {
	if s.Full() {
		return false
	}
	s.slots[s.n] = p
	s.n++
	return true
}

// Active returns the live particles. The slice aliases the arena, so writes
// through it are visible to the owner.
func (s *ParticleSet) Active() []Particle {
	return s.slots[:s.n:s.n]
}

// At returns a pointer to the i-th live particle.
func (s *ParticleSet) At(i int) *Particle {
	return &s.slots[i]
}

// Snapshot copies the live particles.
func (s *ParticleSet) Snapshot() []Particle {
	out := make([]Particle, s.n)
	copy(out, s.slots[:s.n])
	return out
}
