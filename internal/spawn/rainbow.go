package spawn

import (
	"image/color"
	"math"
)

// Rainbow returns the spawn color for simulation time t. Each channel is
// 255·sin² of t shifted by 0, 120 and 240 degrees.
func Rainbow(t float64) color.RGBA {
	channel := func(phase float64) uint8 {
		s := math.Sin(t + phase)
		return uint8(255 * s * s)
	}
	return color.RGBA{
		R: channel(0),
		G: channel(2 * math.Pi / 3),
		B: channel(4 * math.Pi / 3),
		A: 255,
	}
}
