package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles derived from the current theme. applyTheme rebuilds them.
var (
	HeaderStyle   lipgloss.Style
	StatusRunning lipgloss.Style
	StatusPaused  lipgloss.Style
	StatusError   lipgloss.Style
	MetricLabel   lipgloss.Style
	MetricValue   lipgloss.Style
	KeyHint       lipgloss.Style
	Subtle        lipgloss.Style
	GraphStyle    lipgloss.Style
	PanelStyle    lipgloss.Style
	CanvasStyle   lipgloss.Style

	SparkHigh lipgloss.Style
	SparkMid  lipgloss.Style
	SparkLow  lipgloss.Style
)

func init() {
	applyTheme(CurrentTheme)
}

func applyTheme(t Theme) {
	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.Muted)
	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	StatusPaused = lipgloss.NewStyle().Bold(true).Foreground(t.Warning)
	StatusError = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	MetricLabel = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	MetricValue = lipgloss.NewStyle().Foreground(t.Text)
	KeyHint = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
	Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	GraphStyle = lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0)
	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Muted).
		Padding(1, 2).
		Width(46)
	CanvasStyle = lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 2)

	SparkHigh = lipgloss.NewStyle().Foreground(t.Success)
	SparkMid = lipgloss.NewStyle().Foreground(t.Warning)
	SparkLow = lipgloss.NewStyle().Foreground(t.Error)
}

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders a fill bar; high fill is drawn as a warning since it
// is used for particle capacity.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case percent > 0.8:
		return SparkLow.Render(bar)
	case percent > 0.5:
		return SparkMid.Render(bar)
	}
	return SparkHigh.Render(bar)
}

// SparklineChart renders a mini sparkline of the last width values.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
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

	var result strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := max(0, min(int(norm*float64(len(chars)-1)), len(chars)-1))

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}

// Separator draws a muted rule with a centre mark.
func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return Subtle.Render(left + " ◆ " + right)
}

func metricLine(label, format string, args ...any) string {
	return MetricLabel.Render(label) + MetricValue.Render(fmt.Sprintf(format, args...)) + "\n"
}
