package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/verletsim/internal/dynamo"
	"github.com/san-kum/verletsim/internal/viz"
)

const (
	background       = "#0a0a0a"
	particleFallback = "#ffffff"
)

// SnapshotSVG draws the container and every particle at its current
// position, in world units scaled to a size x size image.
func SnapshotSVG(b dynamo.Boundary, ps []dynamo.Particle, size int) string {
	if size <= 0 || !(b.Radius > 0) {
		return ""
	}
	scale := float64(size) / (2 * b.Radius)
	half := float64(size) / 2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#444466" stroke-width="1"/>
<g>
`, size, size, size, size, background, half, half, b.Radius*scale)

	for _, p := range ps {
		cx := half + (p.Pos.X-b.Center.X)*scale
		cy := half + (p.Pos.Y-b.Center.Y)*scale
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s"/>
`, cx, cy, p.Radius*scale, viz.Hex(p.Color, particleFallback))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format, keeping cell tints.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00ff00">
`, width, height, width, height, background)

	dotRadius := scale * 0.4
	sw, sh := canvas.SubSize()
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			if tint := canvas.Colors[y/4][x/2]; tint != "" {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, tint)
				continue
			}
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their index as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	lo -= rng * 0.1
	rng *= 1.2
	step := float64(width) / float64(len(values)-1)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for i, v := range values {
		x := float64(i) * step
		y := float64(height) - (v-lo)/rng*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
