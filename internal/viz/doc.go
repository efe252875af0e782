// Package viz renders a running particle simulation in the terminal.
//
// The viewer is a Bubble Tea program:
//
//   - [Model]: drives [sim.Simulator.Step] from ticks using the measured,
//     capped frame delta and draws the container and particles
//   - [Canvas]: braille pixel canvas with per-cell tint
//   - [Viewport]: world to sub-pixel projection
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
