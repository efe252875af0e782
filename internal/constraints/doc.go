// Package constraints implements the positional constraints of the solver.
//
//   - [ClampToBoundary]: hard clamp of a particle inside the circular boundary
//   - [Solver]: all-pairs overlap resolution with a configurable [Policy]
//
// Both mutate positions only. Because the previous position is left alone,
// the next Verlet step derives a velocity consistent with the correction.
package constraints
