package viz

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
)

func dots(c *Canvas) int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - blank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func TestCanvasPlot(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Plot(0, 0, noInk)
	c.Plot(3, 3, noInk)
	c.Plot(-1, 0, noInk)
	c.Plot(4, 0, noInk)

	if got := c.Grid[0][0]; got != rune(blank|0x1) {
		t.Errorf("cell 0: got %U", got)
	}
	if got := c.Grid[0][1]; got != rune(blank|0x80) {
		t.Errorf("cell 1: got %U", got)
	}
	if c.Inks[0][0].Body != -1 {
		t.Error("plotting without ink must not tag the cell")
	}
}

func TestCanvasInkPriority(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Plot(0, 0, Ink{Body: 0, Trail: true})
	c.Plot(1, 1, Ink{Body: 1})
	c.Plot(0, 2, Ink{Body: 2, Trail: true})

	if got := c.Inks[0][0]; got != (Ink{Body: 1}) {
		t.Errorf("body ink should win over trails, got %+v", got)
	}

	c.Clear()
	if c.Inks[0][0].Body != -1 {
		t.Error("clear should drop inks")
	}
}

func TestFillCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillCircle(10, 10, 0, Ink{Body: 0})
	if n := dots(c); n != 1 {
		t.Errorf("radius 0 should set one dot, got %d", n)
	}

	c.Clear()
	c.FillCircle(10, 10, 2, Ink{Body: 0})
	if n := dots(c); n != 13 {
		t.Errorf("radius 2 disc should set 13 dots, got %d", n)
	}

	c.Clear()
	c.FillCircle(1<<30, 1<<30, 1<<29, Ink{Body: 0})
	if n := dots(c); n != 0 {
		t.Errorf("far disc should draw nothing, got %d", n)
	}
}

func TestDrawLine_ClipsFarEndpoints(t *testing.T) {
	c := NewCanvas(10, 5) // 20 x 20 dots

	c.DrawLine(-farDots, 7, farDots, 7, Ink{Body: 0})
	if n := dots(c); n != 20 {
		t.Errorf("horizontal line across the canvas: got %d dots, want 20", n)
	}

	c.Clear()
	c.DrawLine(-farDots, -5, farDots, -5, Ink{Body: 0})
	if n := dots(c); n != 0 {
		t.Errorf("line above the canvas should draw nothing, got %d", n)
	}

	c.Clear()
	c.DrawLine(-100, -100, 5, 5, Ink{Body: 0})
	if n := dots(c); n != 6 {
		t.Errorf("diagonal entering at the corner: got %d dots, want 6", n)
	}
}

func TestClipLine(t *testing.T) {
	x0, y0, x1, y1, ok := clipLine(-10, 5, 30, 5, 20, 20)
	if !ok || x0 != 0 || x1 != 19 || y0 != 5 || y1 != 5 {
		t.Errorf("got (%g,%g)-(%g,%g) ok=%v", x0, y0, x1, y1, ok)
	}
	if _, _, _, _, ok := clipLine(25, 0, 40, 10, 20, 20); ok {
		t.Error("segment right of the canvas should be rejected")
	}
}

func TestCanvasRender(t *testing.T) {
	c := NewCanvas(3, 1)
	c.Plot(0, 0, Ink{Body: 0})
	c.Plot(4, 0, Ink{Body: 1})

	var seen []Ink
	out := c.Render(func(ink Ink) lipgloss.Style {
		seen = append(seen, ink)
		return lipgloss.NewStyle()
	})
	if len(seen) != 2 || seen[0].Body != 0 || seen[1].Body != 1 {
		t.Errorf("expected one style call per inked run, got %+v", seen)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("expected trailing newline")
	}
}

func TestCameraProject(t *testing.T) {
	cam := NewCamera(dynamo.V(100, 50), 50)
	cam.Scale = 0.5

	x, y := cam.Project(dynamo.V(100, 50), 160, 96)
	if x != 80 || y != 48 {
		t.Errorf("center should land mid-canvas, got (%d, %d)", x, y)
	}

	x, y = cam.Project(dynamo.V(120, 70), 160, 96)
	if x != 90 || y != 58 {
		t.Errorf("expected y to grow downward, got (%d, %d)", x, y)
	}
}

func TestCameraFitAndSpring(t *testing.T) {
	cam := NewCamera(dynamo.V(0, 0), 50)
	bodies := []dynamo.BodyState{
		{Mass: 1, Position: dynamo.V(-100, 0)},
		{Mass: 1, Position: dynamo.V(100, 0)},
	}
	cam.Fit(bodies, 160, 96)

	target := cam.Target()
	if want := 80 / (101 * fitMargin); math.Abs(target-want) > 1e-9 {
		t.Errorf("fit scale: got %f, want %f", target, want)
	}

	for i := 0; i < 500; i++ {
		cam.Update()
	}
	if math.Abs(cam.Scale-target) > 1e-3 {
		t.Errorf("spring should settle on target %f, got %f", target, cam.Scale)
	}

	cam.ZoomIn()
	cam.Fit(bodies, 160, 96)
	if math.Abs(cam.Target()-target*zoomStep) > 1e-9 {
		t.Errorf("zoom should scale target, got %f", cam.Target())
	}
}

func TestBlend(t *testing.T) {
	if got := Blend("#ff0000", "#000000", 0.5); got != "#7f0000" {
		t.Errorf("got %s", got)
	}
	if got := Blend("#00ff00", "#000000", 0); got != "#00ff00" {
		t.Errorf("got %s", got)
	}
}

func TestEnergyDrift(t *testing.T) {
	drift, lo, hi, ok := energyDrift([]float64{-10, -10.5, -9.5})
	if !ok {
		t.Fatal("expected chartable drift")
	}
	if drift[0] != 0 || math.Abs(lo+0.05) > 1e-12 || math.Abs(hi-0.05) > 1e-12 {
		t.Errorf("got %v [%g, %g]", drift, lo, hi)
	}

	cases := map[string][]float64{
		"short":     {1},
		"flat huge": {1.640625e+30, 1.640625e+30},
		"nan":       {1, math.NaN()},
		"inf":       {1, math.Inf(-1)},
	}
	for name, hist := range cases {
		if _, _, _, ok := energyDrift(hist); ok {
			t.Errorf("%s: expected no chart", name)
		}
	}
}

func TestWithTheme(t *testing.T) {
	m, err := NewModel(config.GetPreset("binary"))
	if err != nil {
		t.Fatal(err)
	}
	if got := m.WithTheme("retro").theme.Name; got != "retro" {
		t.Errorf("got theme %s", got)
	}
	if got := m.WithTheme("nope").theme.Name; got != ThemeSpace.Name {
		t.Errorf("unknown theme should fall back, got %s", got)
	}
}

func TestNextTheme(t *testing.T) {
	names := ThemeNames()
	last := Themes[len(Themes)-1].Name
	if NextTheme(last).Name != names[0] {
		t.Error("expected theme cycle to wrap")
	}
	if GetTheme("missing").Name != ThemeSpace.Name {
		t.Error("expected fallback theme")
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTickAndKeys(t *testing.T) {
	m, err := NewModel(config.GetPreset("binary"))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	m = update(t, m, TickMsg{})
	if got := m.Simulation().Steps(); got != 1 {
		t.Fatalf("tick should step once, got %d", got)
	}

	m = update(t, m, key(" "))
	m = update(t, m, TickMsg{})
	if got := m.Simulation().Steps(); got != 1 {
		t.Errorf("paused tick should not step, got %d", got)
	}

	m = update(t, m, key("s"))
	if got := m.Simulation().Steps(); got != 2 {
		t.Errorf("single step while paused, got %d", got)
	}

	m = update(t, m, key("r"))
	if got := m.Simulation().Steps(); got != 0 {
		t.Errorf("reset should rebuild the simulation, got %d steps", got)
	}

	view := m.View()
	if !strings.Contains(view, "PAUSED") || !strings.Contains(view, "BINARY") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestModelHaltsOnDegenerate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Name = "collapse"
	cfg.Bodies = []config.BodyConfig{
		{Mass: 10, Pos: [2]float64{5, 5}},
		{Mass: 10, Pos: [2]float64{5, 5}},
	}

	m, err := NewModel(cfg)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	m = update(t, m, TickMsg{})
	if !errors.Is(m.Err(), dynamo.ErrDegenerateConfiguration) {
		t.Fatalf("expected degenerate error, got %v", m.Err())
	}
	if m.Simulation().Steps() != 0 {
		t.Error("failed step must not advance the simulation")
	}

	m = update(t, m, TickMsg{})
	if m.Simulation().Steps() != 0 {
		t.Error("halted view must not keep stepping")
	}

	view := m.View()
	if !strings.Contains(view, "HALTED") || !strings.Contains(view, "bodies 0 and 1") {
		t.Errorf("expected halt message in view:\n%s", view)
	}
}

func TestModelCloseEncounter(t *testing.T) {
	cfg := config.GetPreset("binary")
	cfg.Trail.Every = 1
	cfg.Bodies[0].Vel = [2]float64{0, 0}
	cfg.Bodies[1].Pos = [2]float64{0, 2e-6}
	cfg.Bodies[1].Vel = [2]float64{0, 0}

	m, err := NewModel(cfg)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	// the pair is flung apart at ~1e14 per step; every frame must still render
	for i := 0; i < 12; i++ {
		m = update(t, m, TickMsg{})
		if view := m.View(); view == "" {
			t.Fatalf("tick %d: empty view", i)
		}
	}
	if m.Err() != nil {
		t.Errorf("separation stays above the minimum distance, got %v", m.Err())
	}
}

func TestCameraEasesOncePerTick(t *testing.T) {
	m, err := NewModel(config.GetPreset("binary"))
	if err != nil {
		t.Fatal(err)
	}
	m = update(t, m, key(" "))
	m.camera.Scale = m.camera.Target() / 2

	before := m.camera.Scale
	m.View()
	m.View()
	if m.camera.Scale != before {
		t.Errorf("rendering moved the camera: %g -> %g", before, m.camera.Scale)
	}

	m = update(t, m, TickMsg{})
	if m.camera.Scale == before {
		t.Error("tick should ease the camera toward its target")
	}
}
