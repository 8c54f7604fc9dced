package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rigidsync/internal/app"
	"github.com/san-kum/rigidsync/internal/config"
	"github.com/san-kum/rigidsync/internal/metrics"
	"github.com/san-kum/rigidsync/internal/physics"
	"github.com/san-kum/rigidsync/internal/sim"
	"github.com/san-kum/rigidsync/internal/tuning"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	historyCapacity = 600

	// the canvas panel's padding puts dot (0,0) at this terminal cell
	canvasLeft = 2
	canvasTop  = 1
)

type tickMsg time.Time

type Option func(*Model)

func WithTheme(name string) Option {
	return func(m *Model) { m.setTheme(GetTheme(name)) }
}

// WithGravityUpdates applies gravity published by a config watcher at the
// start of each tick.
func WithGravityUpdates(updates <-chan mgl32.Vec3) Option {
	return func(m *Model) { m.updates = updates }
}

func WithFrameInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// energyTrail keeps the recent total kinetic energy for the chart.
type energyTrail struct{ values []float64 }

func (e *energyTrail) OnFrame(f sim.Frame) {
	e.values = append(e.values, metrics.TotalEnergy(f))
	if len(e.values) > historyCapacity {
		e.values = e.values[1:]
	}
}

// Model is the live terminal view of one app instance. Each tick runs one
// driver cycle; the driver renders into the wireframe that View prints.
type Model struct {
	app     *app.App
	driver  *sim.Driver
	wire    *Wireframe
	energy  *energyTrail
	updates <-chan mgl32.Vec3

	theme    Theme
	styles   styles
	interval time.Duration
	paused   bool
	showHelp bool
	status   string
	err      error
	cols     int
	rows     int
}

// NewApp builds an app whose renderer is a terminal wireframe.
func NewApp(cfg *config.Config, opts ...app.Option) (*app.App, error) {
	cols, rows := canvasSize(defaultCols, defaultRows)
	opts = append(opts, app.WithRenderer(NewWireframe(cols, rows)), app.WithSize(cols*2, rows*4))
	return app.New(cfg, opts...)
}

// NewModel wraps an app built by NewApp.
func NewModel(a *app.App, opts ...Option) (Model, error) {
	wire, ok := a.Renderer().(*Wireframe)
	if !ok {
		return Model{}, fmt.Errorf("viz: app renderer is %T, not a wireframe", a.Renderer())
	}
	m := Model{
		app:      a,
		wire:     wire,
		energy:   &energyTrail{},
		interval: time.Second / 60,
	}
	m.setTheme(Themes[0])
	m.cols, m.rows = wire.Canvas().Width, wire.Canvas().Height
	for _, opt := range opts {
		opt(&m)
	}

	m.driver = a.NewDriver()
	m.driver.AddObserver(m.energy)
	if err := a.SetupErr(); err != nil {
		m.status = fmt.Sprintf("%d bodies failed", len(a.SetupErrors()))
	}
	return m, nil
}

func (m *Model) setTheme(t Theme) {
	m.theme = t
	m.styles = newStyles(t)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X, msg.Y)
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tickMsg:
		m.step()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	if m.updates != nil && tuning.Drain(m.updates, m.app.Panel) {
		m.status = fmt.Sprintf("gravity reloaded %s", formatVec(m.app.Gravity()))
	}
	if m.paused || m.err != nil {
		return
	}
	if err := m.driver.Cycle(); err != nil {
		m.err = err
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.app.Panel
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
	case "x":
		p.Nudge(tuning.X, 1)
	case "X":
		p.Nudge(tuning.X, -1)
	case "y":
		p.Nudge(tuning.Y, 1)
	case "Y":
		p.Nudge(tuning.Y, -1)
	case "z":
		p.Nudge(tuning.Z, 1)
	case "Z":
		p.Nudge(tuning.Z, -1)
	case "0":
		p.Apply(m.app.Config.Gravity)
	case "left", "h":
		m.app.Camera.Orbit(-0.1, 0)
	case "right", "l":
		m.app.Camera.Orbit(0.1, 0)
	case "up", "k":
		m.app.Camera.Orbit(0, 0.1)
	case "down", "j":
		m.app.Camera.Orbit(0, -0.1)
	case "+", "=":
		m.app.Camera.Zoom(1/1.2, 1, 50)
	case "-", "_":
		m.app.Camera.Zoom(1.2, 1, 50)
	case "t":
		m.setTheme(NextTheme(m.theme.Name))
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// click maps a terminal cell to the centre of its dot block and picks there.
func (m *Model) click(cellX, cellY int) {
	col, row := cellX-canvasLeft, cellY-canvasTop
	if col < 0 || row < 0 || col >= m.cols || row >= m.rows {
		return
	}
	x, y := float32(col*2+1), float32(row*4+2)
	body, ok := m.app.Click(x, y)
	if !ok {
		m.status = "missed"
		return
	}
	m.status = "pushed " + nameOf(m.app, body)
}

func nameOf(a *app.App, body *physics.RigidBody) string {
	for _, b := range a.Registry.Bindings() {
		if b.Body == body {
			return b.Node.Name
		}
	}
	return "?"
}

func canvasSize(width, height int) (int, int) {
	cols := width - statsWidth - 1 - 2*canvasLeft
	rows := height - 2*canvasTop
	return max(cols, 1), max(rows, 1)
}

func (m *Model) resize(width, height int) {
	m.cols, m.rows = canvasSize(width, height)
	m.app.Resize(m.cols*2, m.rows*4)
}

func (m Model) View() string {
	s := m.styles

	lines := m.wire.Canvas().Lines()
	for i, l := range lines {
		lines[i] = s.wire.Render(l)
	}
	canvasView := s.canvas.Render(strings.Join(lines, "\n"))

	var b strings.Builder
	b.WriteString(GradientText("RIGIDSYNC", m.theme.Primary, m.theme.Secondary) + "\n\n")
	switch {
	case m.err != nil:
		b.WriteString(s.failed.Render("STOPPED") + "\n")
		b.WriteString(fit(s.failed.Render(m.err.Error()), statsWidth-4) + "\n\n")
	case m.paused:
		b.WriteString(s.paused.Render("PAUSED") + "\n\n")
	default:
		b.WriteString(s.running.Render("RUNNING") + "\n\n")
	}

	if m.showHelp {
		b.WriteString(m.helpView())
		return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, s.stats.Render(b.String()))
	}

	g := m.app.Gravity()
	b.WriteString(s.header.Render("GRAVITY") + "\n")
	for i, axis := range []tuning.Axis{tuning.X, tuning.Y, tuning.Z} {
		bar := AxisBar(g[i], tuning.Max, 16)
		b.WriteString(s.row(axis.String(), "%s %6.2f", bar, g[i]) + "\n")
	}
	b.WriteString("\n")

	sleeping := 0
	for _, bd := range m.app.Registry.Bindings() {
		if bd.Body.IsSleeping() {
			sleeping++
		}
	}
	b.WriteString(s.row("Frame", "%d", m.driver.Frames()) + "\n")
	b.WriteString(s.row("Time", "%.2fs", m.driver.SimTime()) + "\n")
	b.WriteString(s.row("FPS", "%.1f", m.app.FrameRate.Value()) + "\n")
	b.WriteString(s.row("Bodies", "%d (%d asleep)", m.app.Registry.Len(), sleeping) + "\n")
	nodes, edges := m.wire.Stats()
	b.WriteString(s.row("Drawn", "%d nodes, %d edges", nodes, edges) + "\n")
	if m.status != "" {
		b.WriteString(s.row("Last", "%s", m.status) + "\n")
	}

	if len(m.energy.values) > 1 {
		chart := asciigraph.Plot(m.energy.values, asciigraph.Height(4), asciigraph.Width(statsWidth-14), asciigraph.Caption("kinetic energy"))
		b.WriteString("\n" + s.graph.Render(chart) + "\n")
	}
	b.WriteString("\n" + s.hint.Render("click:push  x/y/z:gravity  ?:help  q:quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, s.stats.Render(b.String()))
}

func (m Model) helpView() string {
	keys := [][2]string{
		{"click", "push a body up"},
		{"x y z", "raise gravity axis"},
		{"X Y Z", "lower gravity axis"},
		{"0", "restore scene gravity"},
		{"arrows", "orbit camera"},
		{"+ -", "zoom"},
		{"space", "pause"},
		{"t", "cycle theme"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(m.styles.row(k[0], "%s", k[1]) + "\n")
	}
	return b.String()
}

func formatVec(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X(), v.Y(), v.Z())
}

// Run shows the model full screen with mouse reporting until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	return err
}
