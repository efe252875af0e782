package viz

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Panel styles, rebuilt from the current theme on every render.
type styles struct {
	canvas lipgloss.Style
	panel  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	run    lipgloss.Style
	pause  lipgloss.Style
	high   lipgloss.Style
	mid    lipgloss.Style
	low    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(42),
		header: lipgloss.NewStyle().Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		graph:  lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		run:    lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		pause:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		high:   lipgloss.NewStyle().Foreground(t.Error),
		mid:    lipgloss.NewStyle().Foreground(t.Warning),
		low:    lipgloss.NewStyle().Foreground(t.Success),
	}
}

// Hex converts a particle color to a terminal color string. Colors with
// zero alpha have no meaningful hue and map to fallback.
func Hex(c color.RGBA, fallback string) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return fallback
	}
	return cf.Hex()
}

// GradientText blends each rune from start to end in Lab space.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	a, errA := colorful.Hex(string(start))
	b, errB := colorful.Hex(string(end))
	if errA != nil || errB != nil {
		return text
	}

	var result strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLab(b, t).Clamped()
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex()))
		result.WriteString(style.Render(string(r)))
	}
	return result.String()
}

// ProgressBar renders percent in [0, 1]. The bar turns warm as it fills,
// since a full container stops spawning.
func (s styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case percent > 0.8:
		return s.high.Render(bar)
	case percent > 0.4:
		return s.mid.Render(bar)
	}
	return s.low.Render(bar)
}

// Sparkline renders the last width values as block characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return b.String()
}
