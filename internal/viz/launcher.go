package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rigidsync/internal/config"
)

var presetInfo = map[string]string{
	"default":  "earth gravity, five shapes",
	"moon":     "lunar gravity",
	"zero_g":   "no gravity, soft pushes",
	"sideways": "gravity with a sideways pull",
	"bouncy":   "lively floor and bodies",
	"calm":     "damped bounces, bodies sleep",
}

const (
	stateMenu = iota
	stateSim
)

// BuildFunc turns a preset name into a running view.
type BuildFunc func(preset string) (Model, error)

// Launcher lists the presets and hands over to the live view on enter.
type Launcher struct {
	state   int
	cursor  int
	presets []string
	build   BuildFunc
	live    Model
	err     error
	width   int
	height  int
}

func NewLauncher(build BuildFunc) Launcher {
	return Launcher{presets: config.ListPresets(), build: build}
}

func (l Launcher) Init() tea.Cmd { return nil }

func (l Launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.state == stateSim {
		next, cmd := l.live.Update(msg)
		l.live = next.(Model)
		return l, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width, l.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return l, tea.Quit
		case "up", "k":
			if l.cursor > 0 {
				l.cursor--
			}
		case "down", "j":
			if l.cursor < len(l.presets)-1 {
				l.cursor++
			}
		case "enter", " ":
			return l.start()
		}
	}
	return l, nil
}

func (l Launcher) start() (tea.Model, tea.Cmd) {
	live, err := l.build(l.presets[l.cursor])
	if err != nil {
		l.err = err
		return l, nil
	}
	if l.width > 0 && l.height > 0 {
		live.resize(l.width, l.height)
	}
	l.live, l.state, l.err = live, stateSim, nil
	return l, l.live.Init()
}

// Selected returns the preset under the cursor.
func (l Launcher) Selected() string { return l.presets[l.cursor] }

func (l Launcher) View() string {
	if l.state == stateSim {
		return l.live.View()
	}

	h := lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pick := lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	name := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))

	var b strings.Builder
	b.WriteString("\n\n    " + h.Render("RIGIDSYNC") + "\n    " + sub.Render("rigid bodies in the terminal") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, p := range l.presets {
		if i == l.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pick.Render("▸"), name.Render(fmt.Sprintf("%-10s", p)), desc.Render(presetInfo[p])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", dim.Render(fmt.Sprintf("%-10s", p)), dim.Render(presetInfo[p])))
		}
	}
	if l.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(l.err.Error()) + "\n")
	}
	b.WriteString("\n    " + pick.Render("j/k") + dim.Render(" navigate  ") + pick.Render("enter") + dim.Render(" start  ") + pick.Render("q") + dim.Render(" quit") + "\n")
	return b.String()
}

// RunLauncher shows the preset menu full screen.
func RunLauncher(ctx context.Context, build BuildFunc) error {
	_, err := tea.NewProgram(NewLauncher(build), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	return err
}
