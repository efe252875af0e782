package constraints

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/dynamo"
)

// Fallback is the separation axis used when two centers coincide.
var Fallback = r2.Vec{X: 1, Y: 0}

// ClampToBoundary moves p back onto the inner wall of b when it pokes out.
// It reports whether p was moved.
func ClampToBoundary(p *dynamo.Particle, b dynamo.Boundary) bool {
	limit := b.Radius - p.Radius
	to := r2.Sub(p.Pos, b.Center)
	if r2.Norm(to) <= limit {
		return false
	}
	p.Pos = r2.Add(b.Center, r2.Scale(limit, direction(to)))
	return true
}

// direction returns the unit vector of v, or Fallback when v is zero.
func direction(v r2.Vec) r2.Vec {
	if v.X == 0 && v.Y == 0 {
		return Fallback
	}
	return r2.Unit(v)
}
