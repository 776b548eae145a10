package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/trail"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 44
	historyCapacity = 600
)

type TickMsg time.Time

// Model drives a simulation from a bubbletea tick and draws it on a
// braille canvas.
type Model struct {
	cfg      *config.Config
	sim      *dynamo.Simulation
	trails   *trail.Recorder
	camera   *Camera
	canvas   *Canvas
	theme    Theme
	styles   styles
	interval time.Duration

	energy   []float64
	momentum []float64

	running  bool
	err      error
	showHelp bool
}

// NewModel builds the simulation described by cfg. Setup errors are
// returned here; step errors halt the view and are shown in the panel.
func NewModel(cfg *config.Config) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = config.DefaultInterval
	}

	m := Model{
		cfg:      cfg,
		canvas:   NewCanvas(width, height),
		theme:    ThemeSpace,
		interval: interval,
		running:  true,
	}
	m.styles = newStyles(m.theme, cfg.Colors())
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// WithTheme returns the model drawn in the named theme. Unknown names get
// the default theme.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.styles = newStyles(m.theme, m.cfg.Colors())
	return m
}

// Simulation exposes the running simulation, mainly for tests.
func (m Model) Simulation() *dynamo.Simulation { return m.sim }

// Err returns the step error that halted the view, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
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
		case "s":
			if !m.running {
				m.step()
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = newStyles(m.theme, m.cfg.Colors())
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w, h := msg.Width-panelWidth-4, msg.Height-2
		if w > 10 && h > 5 {
			m.canvas = NewCanvas(w, h)
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.frame()
		return m, m.tick()
	}
	return m, nil
}

// step advances one tick. A degenerate configuration halts the view; the
// simulation itself is left at the last good state.
func (m *Model) step() {
	if m.err != nil {
		return
	}
	if err := m.sim.Step(); err != nil {
		m.err = err
		m.running = false
		return
	}

	snap := m.sim.Snapshot()
	m.energy = pushCapped(m.energy, dynamo.KineticEnergy(snap.Bodies)+dynamo.PotentialEnergy(snap.Bodies, m.cfg.G))
	m.momentum = pushCapped(m.momentum, dynamo.Momentum(snap.Bodies).Len())
}

func pushCapped(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

// reset rebuilds the simulation from the config.
func (m *Model) reset() error {
	sim, err := dynamo.New(m.cfg.BodySpecs(), m.cfg.SimConfig())
	if err != nil {
		return err
	}
	rec := trail.NewRecorder(sim.Len(), m.cfg.Trail.Every, m.cfg.Trail.Capacity)
	sim.AddObserver(rec)

	fps := int(time.Second / m.interval)
	zoom := 1.0
	if m.camera != nil {
		zoom = m.camera.Zoom
	}
	m.camera = NewCamera(sim.Config().Center, fps)
	m.camera.Zoom = zoom
	m.camera.Fit(sim.Snapshot().Bodies, m.canvas.SubWidth(), m.canvas.SubHeight())
	m.camera.Scale = m.camera.Target()

	m.sim = sim
	m.trails = rec
	m.energy = m.energy[:0]
	m.momentum = m.momentum[:0]
	m.err = nil
	return nil
}

// frame eases the camera toward the current bodies, once per tick.
func (m *Model) frame() {
	m.camera.Fit(m.sim.Snapshot().Bodies, m.canvas.SubWidth(), m.canvas.SubHeight())
	m.camera.Update()
}

func (m *Model) draw(snap dynamo.Snapshot) {
	m.canvas.Clear()
	w, h := m.canvas.SubWidth(), m.canvas.SubHeight()

	for i := 0; i < m.trails.Bodies(); i++ {
		ink := Ink{Body: i, Trail: true}
		pts := m.trails.Points(i)
		for j := 1; j < len(pts); j++ {
			x0, y0 := m.camera.Project(pts[j-1], w, h)
			x1, y1 := m.camera.Project(pts[j], w, h)
			m.canvas.DrawLine(x0, y0, x1, y1, ink)
		}
	}

	for i, b := range snap.Bodies {
		x, y := m.camera.Project(b.Position, w, h)
		m.canvas.FillCircle(x, y, m.camera.Radius(BodySize(b.Mass)), Ink{Body: i})
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	snap := m.sim.Snapshot()
	m.draw(snap)
	canvasView := lipgloss.NewStyle().Padding(1, 2).Render(m.canvas.Render(m.styles.ink))

	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.cfg.Name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(m.styles.halted.Render("HALTED") + "\n")
		s.WriteString(m.styles.halted.Render(errorLine(m.err)) + "\n\n")
	case m.running:
		s.WriteString(m.styles.running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(m.styles.paused.Render("PAUSED") + "\n\n")
	}

	if drift, lo, hi, ok := energyDrift(m.energy); ok {
		chart := asciigraph.Plot(drift,
			asciigraph.Height(4),
			asciigraph.Width(28),
			asciigraph.LowerBound(lo),
			asciigraph.UpperBound(hi),
			asciigraph.Caption("Energy drift"),
		)
		s.WriteString(m.styles.graph.Render(chart) + "\n\n")
	}

	s.WriteString(m.row("Step", fmt.Sprintf("%d", snap.Step)))
	s.WriteString(m.row("Energy", fmt.Sprintf("%.4g", last(m.energy))))
	s.WriteString(m.row("|p|", fmt.Sprintf("%.3g", last(m.momentum))))
	s.WriteString(m.row("", SparklineChart(m.momentum, 20)))
	s.WriteString(m.row("Zoom", fmt.Sprintf("%.2fx", m.camera.Zoom)))
	s.WriteString(m.row("Theme", m.theme.Name))

	s.WriteString("\nBODIES\n")
	for i, b := range snap.Bodies {
		s.WriteString(m.styles.bodies[i].Render("●") + " " + m.styles.value.Render(fmt.Sprintf("m=%-8.4g (%.1f, %.1f)", b.Mass, b.Position.X, b.Position.Y)) + "\n")
	}

	s.WriteString(m.styles.help.Render("SP:Pause S:Step R:Reset Q:Quit\n+/-:Zoom  T:Theme  ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.panel.Render(s.String()))

	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

func (m Model) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

func errorLine(err error) string {
	var pe *dynamo.PairError
	if errors.As(err, &pe) {
		return fmt.Sprintf("bodies %d and %d too close (%.3g)", pe.I, pe.J, pe.Distance)
	}
	return err.Error()
}

// energyDrift expresses an energy history relative to its first sample,
// scaled by that sample's magnitude. ok is false when there is nothing
// worth charting: fewer than two samples, a non-finite value or no spread.
func energyDrift(hist []float64) (drift []float64, lo, hi float64, ok bool) {
	if len(hist) < 2 {
		return nil, 0, 0, false
	}

	e0 := hist[0]
	scale := math.Abs(e0)
	if scale == 0 {
		scale = 1
	}

	drift = make([]float64, len(hist))
	lo, hi = math.Inf(1), math.Inf(-1)
	for i, e := range hist {
		d := (e - e0) / scale
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, 0, 0, false
		}
		drift[i] = d
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	if !(hi-lo > 1e-12) || math.IsInf(hi-lo, 0) {
		return nil, 0, 0, false
	}
	return drift, lo, hi, true
}

func last(hist []float64) float64 {
	if len(hist) == 0 {
		return math.NaN()
	}
	return hist[len(hist)-1]
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  S        - Single step when paused  ║
║  R        - Reset to initial state   ║
║  + / -    - Zoom in / out            ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
