package viz

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/fluid"
)

var (
	accent   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	info     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	faded    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	title    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	sub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

var presetInfo = map[string]string{
	"dam_break": "column collapse",
	"small":     "benchmark scene",
	"viscous":   "thick fluid",
	"splash":    "blocks in low gravity",
	"tight":     "small tank",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one editable parameter of the selected preset.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var fields = []field{
	{"dam", func(c *config.Config) float64 { return float64(c.Particles.Dam) }, func(c *config.Config, v float64) { c.Particles.Dam = int(v) }},
	{"block", func(c *config.Config) float64 { return float64(c.Particles.Block) }, func(c *config.Config, v float64) { c.Particles.Block = int(v) }},
	{"stiffness", func(c *config.Config) float64 { return c.Physics.Stiffness }, func(c *config.Config, v float64) { c.Physics.Stiffness = v }},
	{"near_stiff", func(c *config.Config) float64 { return c.Physics.NearStiffness }, func(c *config.Config, v float64) { c.Physics.NearStiffness = v }},
	{"lin_visc", func(c *config.Config) float64 { return c.Physics.LinearViscosity }, func(c *config.Config, v float64) { c.Physics.LinearViscosity = v }},
	{"quad_visc", func(c *config.Config) float64 { return c.Physics.QuadraticViscosity }, func(c *config.Config, v float64) { c.Physics.QuadraticViscosity = v }},
	{"gravity", func(c *config.Config) float64 { return c.Physics.Gravity[1] }, func(c *config.Config, v float64) { c.Physics.Gravity[1] = v }},
	{"workers", func(c *config.Config) float64 { return float64(c.Solver.Workers) }, func(c *config.Config, v float64) { c.Solver.Workers = max(0, int(v)) }},
}

// App picks a preset, lets a few parameters be tuned and then hands over
// to the live view.
type App struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	logger        *slog.Logger
	live          Model
}

func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		state:   stateMenu,
		presets: config.ListPresets(),
		logger:  logger,
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		live, cmd := a.live.Update(msg)
		a.live = live.(Model)
		return a, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch a.state {
		case stateMenu:
			return a.menuKey(msg)
		case stateConfig:
			return a.configKey(msg)
		}
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.cfg = config.GetPreset(a.presets[a.cursor])
		a.state, a.fieldCursor, a.err = stateConfig, 0, nil
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (App, tea.Cmd) {
	f := fields[a.fieldCursor]
	if a.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(a.editBuf, 64); err == nil {
				f.set(a.cfg, v)
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				a.editBuf += s
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.fieldCursor > 0 {
			a.fieldCursor--
		}
	case "down", "j":
		if a.fieldCursor < len(fields)-1 {
			a.fieldCursor++
		}
	case "enter", " ":
		a.editing, a.editBuf = true, strconv.FormatFloat(f.get(a.cfg), 'g', -1, 64)
	case "left", "h":
		f.set(a.cfg, f.get(a.cfg)*0.9)
	case "right", "l":
		f.set(a.cfg, f.get(a.cfg)*1.1)
	case "s":
		return a.start()
	}
	return a, nil
}

func (a App) start() (App, tea.Cmd) {
	s, err := fluid.New(a.cfg.Params())
	if err != nil {
		a.err = err
		return a, nil
	}
	placed := s.InitDamBreak(a.cfg.Particles.Dam)
	a.logger.Info("solver initialised", "preset", a.cfg.Name, "particles", placed)

	a.live = NewModel(s, a.cfg.Name, a.logger)
	a.state = stateSim
	return a, a.live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateMenu:
		return a.viewMenu()
	case stateConfig:
		return a.viewConfig()
	}
	return a.live.View()
}

func (a App) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + title.Render("FLUIDSIM") + "\n    " + sub.Render("2-D particle fluid") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range a.presets {
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", accent.Render("▸"), selected.Render(fmt.Sprintf("%-12s", name)), info.Render(presetInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", faded.Render(fmt.Sprintf("%-12s", name)), faded.Render(presetInfo[name])))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (a App) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + title.Render(strings.ToUpper(a.cfg.Name)) + "\n    " + sub.Render(presetInfo[a.cfg.Name]) + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, f := range fields {
		val := fmt.Sprintf("%10.4g", f.get(a.cfg))
		if a.editing && i == a.fieldCursor {
			val = fmt.Sprintf("%10s", a.editBuf+"_")
		}
		if i == a.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", accent.Render("▸"), selected.Render(fmt.Sprintf("%-10s", f.name)), info.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", faded.Render(fmt.Sprintf("%-10s", f.name)), faded.Render(val)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + StatusError.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(accent.Render(pairs[i]) + faded.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive(logger *slog.Logger) error {
	_, err := tea.NewProgram(NewApp(logger), tea.WithAltScreen()).Run()
	return err
}
