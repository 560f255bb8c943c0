package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fluidsim/internal/fluid"
	"github.com/san-kum/fluidsim/internal/metrics"
	"github.com/san-kum/fluidsim/internal/telemetry"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 240
	tickRate        = time.Second / 60
	gifPath         = "fluidsim.gif"
)

type TickMsg time.Time

// Model is the live terminal view of a running solver.
type Model struct {
	solver *fluid.Solver
	perf   *telemetry.PerfCollector
	logger *slog.Logger
	title  string

	width, height int
	canvas        *Canvas
	positions     []r2.Vec

	running  bool
	failed   bool
	showHelp bool
	recorder *Recorder

	summary        metrics.Summary
	densityHistory []float64
	speedHistory   []float64
}

// NewModel wraps a solver that already holds its initial scene.
func NewModel(s *fluid.Solver, title string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := Model{
		solver:         s,
		perf:           telemetry.NewPerfCollector(60),
		logger:         logger,
		title:          title,
		width:          width,
		height:         height,
		canvas:         NewCanvas(width, height),
		positions:      make([]r2.Vec, 0, s.Params().MaxParticles),
		running:        true,
		densityHistory: make([]float64, 0, historyCapacity),
		speedHistory:   make([]float64, 0, historyCapacity),
	}
	s.SetPhaseObserver(m.perf)
	m.draw()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopRecording()
			return m, tea.Quit
		case " ":
			m.addBlock()
		case "r":
			m.solver.Reset()
			m.resetHistory()
			m.logger.Info("reset", "particles", m.solver.Count())
		case "c":
			m.solver.Clear()
			m.resetHistory()
			m.logger.Info("cleared")
		case "p":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "t":
			NextTheme()
		case "g":
			if m.recorder != nil {
				m.stopRecording()
			} else {
				m.recorder = NewRecorder(2)
			}
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw()
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running && !m.failed {
			m.step()
		}
		m.draw()
		m.perf.RecordRender()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) addBlock() {
	n := m.solver.Params().BlockParticles
	if m.solver.AddBlock(n) {
		m.logger.Info("block added", "count", n, "total", m.solver.Count())
		return
	}
	m.logger.Warn("capacity reached", "total", m.solver.Count(), "max", m.solver.Params().MaxParticles)
}

// step advances one frame and records its statistics.
func (m *Model) step() {
	m.perf.StartFrame()
	m.solver.Step()
	m.perf.EndFrame()

	ps := m.solver.Particles()
	if !fluid.Finite(ps) {
		m.failed = true
		m.running = false
		m.logger.Error("invalid particle state", "frame", m.solver.Frame())
		return
	}

	m.summary = metrics.Summarize(ps, metrics.InteriorNeighbors)
	m.densityHistory = pushHistory(m.densityHistory, m.summary.MeanDensity)
	m.speedHistory = pushHistory(m.speedHistory, m.summary.MaxSpeed)
}

func pushHistory(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) resetHistory() {
	m.failed = false
	m.summary = metrics.Summary{Count: m.solver.Count()}
	m.densityHistory = m.densityHistory[:0]
	m.speedHistory = m.speedHistory[:0]
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Save(gifPath); err != nil {
		m.logger.Error("save recording", "err", err)
	} else {
		m.logger.Info("recording saved", "path", gifPath)
	}
	m.recorder = nil
}

// resize keeps the canvas at the domain's aspect ratio inside the space
// left of the stats panel.
func (m *Model) resize(termW, termH int) {
	p := m.solver.Params()
	w := max(20, termW-52)
	h := max(8, termH-4)
	// a braille cell is 2x4 dots and about twice as tall as wide
	if fit := int(float64(w) * p.Height / p.Width / 2); fit < h {
		h = max(8, fit)
	} else {
		w = max(20, int(float64(h)*2*p.Width/p.Height))
	}
	m.width, m.height = w, h
	m.canvas = NewCanvas(w, h)
	m.draw()
}

func (m *Model) draw() {
	p := m.solver.Params()
	m.positions = m.solver.Positions(m.positions)
	m.canvas.DrawParticles(m.positions, p.Width, p.Height)
}

// View renders the canvas beside the stats panel.
func (m Model) View() string {
	p := m.solver.Params()
	var s strings.Builder

	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n\n")
	switch {
	case m.failed:
		s.WriteString(StatusError.Render("DIVERGED") + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render(AnimatedSpinner(m.solver.Frame())+" RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}
	if m.recorder != nil {
		s.WriteString(StatusError.Render(fmt.Sprintf("● REC %d", m.recorder.Frames())) + "\n\n")
	}

	count := m.solver.Count()
	s.WriteString(metricLine("Particles", "%d / %d", count, p.MaxParticles))
	s.WriteString(MetricLabel.Render("") + ProgressBar(float64(count)/float64(p.MaxParticles), 24) + "\n")
	s.WriteString(metricLine("Frame", "%d", m.solver.Frame()))
	s.WriteString(metricLine("Time", "%.2fs", m.solver.Time()))
	s.WriteString(metricLine("Density", "%.2f (rest %.0f)", m.summary.MeanDensity, p.RestDensity*p.Mass))
	s.WriteString(metricLine("Interior", "%d", m.summary.Interior))
	s.WriteString(metricLine("Neighbors", "%.1f", m.summary.MeanNeighbors))
	s.WriteString(metricLine("Max speed", "%.2f", m.summary.MaxSpeed))

	if len(m.densityHistory) > 1 {
		chart := asciigraph.Plot(m.densityHistory, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("mean density"))
		s.WriteString(GraphStyle.Render(chart) + "\n")
	}
	s.WriteString(MetricLabel.Render("Speed") + SparklineChart(m.speedHistory, 30) + "\n\n")

	stats := m.perf.Stats()
	s.WriteString(metricLine("Step", "%.1fms", float64(stats.AvgFrameDuration.Microseconds())/1000))
	s.WriteString(metricLine("FPS", "%.0f", stats.FPS))
	for _, phase := range telemetry.Phases {
		s.WriteString(metricLine("  "+phase, "%4.1f%%", stats.PhasePct[phase]))
	}

	s.WriteString("\n" + Separator(30) + "\n")
	s.WriteString(KeyHint.Render("SP:Block R:Reset C:Clear P:Pause\nN:Step T:Theme G:Record ?:Help Q:Quit"))

	canvasView := CanvasStyle.Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, PanelStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Drop a block of fluid    ║
║  R        - Reset to the dam break   ║
║  C        - Remove every particle    ║
║  P        - Pause/Resume             ║
║  N        - Single frame when paused ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the live view on s and blocks until the user quits.
func Run(s *fluid.Solver, title string, logger *slog.Logger) error {
	_, err := tea.NewProgram(NewModel(s, title, logger), tea.WithAltScreen()).Run()
	return err
}
