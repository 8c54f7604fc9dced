package viz

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/app"
	"github.com/san-kum/rigidsync/internal/config"
)

func TestCanvasDots(t *testing.T) {
	c := NewCanvas(3, 2)
	if w, h := c.Dots(); w != 6 || h != 8 {
		t.Fatalf("expected 6x8 dots, got %dx%d", w, h)
	}

	c.Set(0, 0)
	c.Set(1, 3)
	if c.Grid[0][0] != 0x2800|0x1|0x80 {
		t.Errorf("unexpected cell %U", c.Grid[0][0])
	}
	if !c.Lit(1, 3) || c.Lit(1, 2) {
		t.Error("Lit disagrees with Set")
	}
	c.Unset(0, 0)
	if c.Count() != 1 {
		t.Errorf("expected 1 dot, got %d", c.Count())
	}

	c.Set(-1, 0)
	c.Set(6, 0)
	c.Set(0, 8)
	if c.Count() != 1 {
		t.Error("out of range dots should be ignored")
	}

	c.Clear()
	if c.Count() != 0 {
		t.Error("Clear left dots behind")
	}
	if lines := c.Lines(); len(lines) != 2 || lines[0] != strings.Repeat(string(rune(brailleBlank)), 3) {
		t.Errorf("unexpected lines %q", lines)
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 2)
	c.DrawLine(0, 3, 9, 3)
	if c.Count() != 10 {
		t.Errorf("horizontal line: expected 10 dots, got %d", c.Count())
	}

	c.Clear()
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.Lit(i, i) {
			t.Errorf("diagonal missing dot %d", i)
		}
	}
}

func TestCanvasResize(t *testing.T) {
	c := NewCanvas(4, 4)
	c.Set(1, 1)
	c.Resize(2, -1)
	if c.Width != 2 || c.Height != 0 || c.Count() != 0 {
		t.Errorf("unexpected canvas after resize: %dx%d, %d dots", c.Width, c.Height, c.Count())
	}
}

func TestWireframeDrawsScene(t *testing.T) {
	a, err := NewApp(nil)
	if err != nil {
		t.Fatal(err)
	}
	wire := a.Renderer().(*Wireframe)
	if err := a.NewDriver().Cycle(); err != nil {
		t.Fatal(err)
	}

	nodes, edges := wire.Stats()
	if nodes == 0 || edges == 0 {
		t.Errorf("nothing drawn: %d nodes, %d edges", nodes, edges)
	}
	if wire.Canvas().Count() == 0 {
		t.Error("canvas is empty")
	}

	a.Resize(20, 40)
	if c := wire.Canvas(); c.Width != 10 || c.Height != 10 {
		t.Errorf("resize in dots should give 10x10 cells, got %dx%d", c.Width, c.Height)
	}
}

func TestWireframeEmptyCanvas(t *testing.T) {
	a, err := NewApp(nil)
	if err != nil {
		t.Fatal(err)
	}
	w := NewWireframe(0, 0)
	if err := w.Render(a.Scene, a.Camera); err != nil {
		t.Fatal(err)
	}
	if n, _ := w.Stats(); n != 0 {
		t.Errorf("expected nothing drawn, got %d nodes", n)
	}
}

func TestNewModelNeedsWireframe(t *testing.T) {
	plain, err := app.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewModel(plain); err == nil {
		t.Error("expected error for an app without a wireframe")
	}

	a, err := NewApp(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewModel(a); err != nil {
		t.Fatal(err)
	}
}

func newTestModel(t *testing.T, cfg *config.Config, opts ...Option) Model {
	t.Helper()
	a, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(a, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelGravityKeys(t *testing.T) {
	m := newTestModel(t, nil)

	m = update(m, key("x"))
	m = update(m, key("x"))
	m = update(m, key("Y"))
	g := m.app.Gravity()
	if math.Abs(float64(g.X()-0.2)) > 1e-5 {
		t.Errorf("expected x 0.2, got %v", g)
	}
	if math.Abs(float64(g.Y()+9.9)) > 1e-5 {
		t.Errorf("expected y -9.9, got %v", g)
	}

	m = update(m, key("0"))
	if m.app.Gravity() != config.DefaultGravity {
		t.Errorf("expected scene gravity restored, got %v", m.app.Gravity())
	}
}

func TestModelTickRunsCycle(t *testing.T) {
	m := newTestModel(t, nil)
	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.driver.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", m.driver.Frames())
	}

	m = update(m, key(" "))
	m = update(m, tickMsg(time.Now()))
	if m.driver.Frames() != 1 {
		t.Error("paused model should not cycle")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show paused state")
	}
}

func TestModelAppliesWatchedGravity(t *testing.T) {
	updates := make(chan mgl32.Vec3, 1)
	updates <- mgl32.Vec3{0, -1.62, 0}
	m := newTestModel(t, nil, WithGravityUpdates(updates))

	m = update(m, tickMsg(time.Now()))
	if m.app.Gravity() != (mgl32.Vec3{0, -1.62, 0}) {
		t.Errorf("gravity not applied: %v", m.app.Gravity())
	}
	if !strings.HasPrefix(m.status, "gravity reloaded") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestModelClickPushesBody(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Floor.Enabled = false
	cfg.Bodies = []config.BodyConfig{
		{Name: "ball", Geometry: "sphere", Collider: "ball", Position: cfg.Camera.Target},
	}
	m := newTestModel(t, cfg)

	col, row := m.cols/2, m.rows/2
	m = update(m, tea.MouseMsg{X: col + canvasLeft, Y: row + canvasTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.status != "pushed ball" {
		t.Fatalf("unexpected status %q", m.status)
	}
	body, _ := m.app.Body("ball")
	if body.Linvel() != cfg.Impulse {
		t.Errorf("ball velocity %v, want %v", body.Linvel(), cfg.Impulse)
	}

	m.status = ""
	m = update(m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.status != "" {
		t.Error("clicks on the padding should be ignored")
	}
	m = update(m, tea.MouseMsg{X: canvasLeft, Y: canvasTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.status != "missed" {
		t.Errorf("corner click should miss, got %q", m.status)
	}
}

func TestModelResize(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if m.cols != 120-statsWidth-1-2*canvasLeft || m.rows != 40-2*canvasTop {
		t.Errorf("unexpected canvas %dx%d", m.cols, m.rows)
	}
	if w, h := m.app.Size(); w != m.cols*2 || h != m.rows*4 {
		t.Errorf("app size %dx%d", w, h)
	}
}

func TestAxisBar(t *testing.T) {
	tests := []struct {
		v    float32
		want string
	}{
		{0, "────┼────"},
		{5, "────┼██──"},
		{-10, "████┼────"},
		{25, "────┼████"},
	}
	for _, tt := range tests {
		if got := AxisBar(tt.v, 10, 8); got != tt.want {
			t.Errorf("AxisBar(%g) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
	last := Themes[len(Themes)-1]
	if NextTheme(last.Name).Name != Themes[0].Name {
		t.Error("NextTheme should wrap")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}

func TestFit(t *testing.T) {
	if got := fit("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := fit(strings.Repeat("a", 20), 10); got != strings.Repeat("a", 9)+"…" {
		t.Errorf("got %q", got)
	}
}

func TestLauncherStartsPreset(t *testing.T) {
	var built string
	l := NewLauncher(func(preset string) (Model, error) {
		built = preset
		cfg, err := config.GetPreset(preset)
		if err != nil {
			return Model{}, err
		}
		a, err := NewApp(cfg)
		if err != nil {
			return Model{}, err
		}
		return NewModel(a)
	})

	next, _ := l.Update(key("j"))
	l = next.(Launcher)
	want := l.Selected()
	next, cmd := l.Update(tea.KeyMsg{Type: tea.KeyEnter})
	l = next.(Launcher)

	if built != want || l.state != stateSim || cmd == nil {
		t.Fatalf("launcher did not start %q (built %q)", want, built)
	}
	if !strings.Contains(l.View(), "GRAVITY") {
		t.Error("expected live view after start")
	}
}
