// Package dynamo provides the core data model of the particle solver.
//
// The package defines the passive records every other component works on:
//
//   - [Particle]: one circular body with Verlet position history
//   - [Boundary]: the circular container
//   - [ParticleSet]: a fixed-capacity, append-only arena of particles
//
// Vectors are gonum [r2.Vec] values. Screen coordinates are used
// throughout, so positive Y points down and gravity is usually (0, +g).
//
// # Example
//
//	set := dynamo.NewParticleSet(1000)
//	b := dynamo.Boundary{Center: r2.Vec{X: 500, Y: 500}, Radius: 450}
//	set.Append(dynamo.NewParticle(b.Center, 10, color.RGBA{A: 255}))
//
// # Thread Safety
//
// ParticleSet is NOT thread-safe. A set is owned by exactly one
// simulator, which mutates it in place during a frame.
package dynamo
