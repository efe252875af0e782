package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/dynamo"
	"github.com/san-kum/verletsim/internal/sim"
)

const historyCapacity = 600

// Options configures the live viewer.
type Options struct {
	Width, Height int
	FPS           int
	// MaxFrameDt caps the measured tick delta so a stalled terminal does
	// not hand the solver one huge step.
	MaxFrameDt float64
	Theme      string
}

func DefaultOptions() Options {
	return Options{
		Width:      80,
		Height:     40,
		FPS:        60,
		MaxFrameDt: 1.0 / 20,
		Theme:      ThemeCyberpunk.Name,
	}
}

type TickMsg time.Time

// Model drives a Simulator from terminal ticks and renders it.
type Model struct {
	sim      *sim.Simulator
	name     string
	opts     Options
	canvas   *Canvas
	view     Viewport
	theme    Theme
	last     time.Time
	running  bool
	showHelp bool

	fillHistory    []float64
	contactHistory []float64
	frameDt        float64
}

func NewModel(s *sim.Simulator, name string, opts Options) Model {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if !(opts.MaxFrameDt > 0) {
		opts.MaxFrameDt = def.MaxFrameDt
	}

	canvas := NewCanvas(opts.Width, opts.Height)
	sw, sh := canvas.SubSize()
	return Model{
		sim:            s,
		name:           name,
		opts:           opts,
		canvas:         canvas,
		view:           Fit(s.Boundary(), sw, sh),
		theme:          GetTheme(opts.Theme),
		running:        true,
		fillHistory:    make([]float64, 0, historyCapacity),
		contactHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		now := time.Time(msg)
		if m.running {
			m.step(FrameDelta(m.last, now, 1/float64(m.opts.FPS), m.opts.MaxFrameDt))
		}
		m.last = now
		return m, m.tick()
	}
	return m, nil
}

// FrameDelta is the seconds between two ticks, capped at maxDt. The first
// tick has no predecessor and uses nominal.
func FrameDelta(prev, now time.Time, nominal, maxDt float64) float64 {
	if prev.IsZero() {
		return math.Min(nominal, maxDt)
	}
	dt := now.Sub(prev).Seconds()
	if dt < 0 {
		return 0
	}
	return math.Min(dt, maxDt)
}

func (m *Model) step(dt float64) {
	m.sim.Step(dt)
	m.frameDt = dt

	st := m.sim.Stats()
	m.fillHistory = appendCapped(m.fillHistory, st.FillPercent)
	m.contactHistory = appendCapped(m.contactHistory, float64(st.Contacts))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) draw() {
	m.canvas.Clear()
	b := m.sim.Boundary()
	cx, cy := m.view.ToScreen(b.Center)
	m.canvas.DrawCircle(cx, cy, m.view.Length(b.Radius), string(m.theme.Boundary))

	for _, p := range m.sim.Particles() {
		x, y := m.view.ToScreen(p.Pos)
		m.canvas.FillCircle(x, y, m.view.Length(p.Radius), Hex(p.Color, string(m.theme.Primary)))
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	st := newStyles(m.theme)
	stats := m.sim.Stats()
	cfg := m.sim.Config()

	var s strings.Builder
	s.WriteString(st.header.Render(GradientText(strings.ToUpper(m.name), m.theme.Primary, m.theme.Secondary)) + "\n")
	if m.running {
		s.WriteString(st.run.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(st.pause.Render("PAUSED") + "\n\n")
	}

	if len(m.fillHistory) > 1 {
		chart := asciigraph.Plot(m.fillHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Fill %"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", stats.Time))
	row("Frame", fmt.Sprintf("%d (dt %.4f)", stats.Frame, m.frameDt))
	row("Active", fmt.Sprintf("%d / %d", stats.Active, stats.Capacity))
	row("Fill", fmt.Sprintf("%.1f%% of %.0f%%", stats.FillPercent, cfg.Spawn.FillCeiling))
	s.WriteString(st.ProgressBar(stats.FillPercent/cfg.Spawn.FillCeiling, 20) + "\n")
	row("Contacts", fmt.Sprintf("%d", stats.Contacts))
	s.WriteString(st.value.Render(Sparkline(m.contactHistory, 30)) + "\n")
	row("Sub-steps", fmt.Sprintf("%d", cfg.SubSteps))
	row("Policy", fmt.Sprintf("%s %.2f", cfg.Policy, cfg.Response))

	s.WriteString(st.help.Render("SP:Pause T:Theme ?:Help Q:Quit"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.Render()), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
  Space    Pause/Resume simulation
  T        Cycle themes
  ?        Toggle this help
  Q        Quit`

// Run starts the viewer and blocks until the user quits.
func Run(s *sim.Simulator, name string, opts Options) error {
	_, err := tea.NewProgram(NewModel(s, name, opts), tea.WithAltScreen()).Run()
	return err
}

// Viewport maps world coordinates onto canvas sub-pixels, keeping the
// boundary circle centered and round.
type Viewport struct {
	center         r2.Vec
	scale          float64
	originX, origY float64
}

func Fit(b dynamo.Boundary, subW, subH int) Viewport {
	side := math.Min(float64(subW), float64(subH)) - 2
	scale := 1.0
	if b.Radius > 0 && side > 0 {
		scale = side / (2 * b.Radius)
	}
	return Viewport{
		center:  b.Center,
		scale:   scale,
		originX: float64(subW) / 2,
		origY:   float64(subH) / 2,
	}
}

func (v Viewport) ToScreen(p r2.Vec) (int, int) {
	d := r2.Scale(v.scale, r2.Sub(p, v.center))
	return int(math.Round(v.originX + d.X)), int(math.Round(v.origY + d.Y))
}

// Length converts a world distance to whole sub-pixels.
func (v Viewport) Length(d float64) int {
	return int(math.Round(d * v.scale))
}
