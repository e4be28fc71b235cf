package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pipedeck/pipedeck/internal/monitor"
	"github.com/pipedeck/pipedeck/models"
)

// MetricsModel shows the newest sample as gauges plus a short history strip
// per metric.
type MetricsModel struct {
	svc     *monitor.Service
	current *models.SystemMetrics
	history []models.SystemMetrics
	width   int
	height  int
}

type metricsLoadedMsg struct {
	current *models.SystemMetrics
	history []models.SystemMetrics
}

// NewMetricsModel creates a MetricsModel.
func NewMetricsModel(svc *monitor.Service) MetricsModel {
	return MetricsModel{svc: svc}
}

func (m MetricsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m MetricsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return metricsLoadedMsg{
			current: m.svc.CurrentMetrics(),
			history: m.svc.MetricsHistory(1),
		}
	}
}

func (m MetricsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case metricsLoadedMsg:
		m.current = msg.current
		m.history = msg.history
		// Follow the sampler cadence.
		return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg {
			return m.loadCmd()()
		})
	}
	return m, nil
}

func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m MetricsModel) View() string {
	if m.current == nil {
		return panelStyle.Width(max(20, m.width-2)).Render("Waiting for the first metrics sample...")
	}

	barW := 30
	if m.width < 70 {
		barW = 16
	}
	rows := lipgloss.JoinVertical(lipgloss.Left,
		renderGauge("CPU", m.current.CPU, barW),
		renderGauge("Memory", m.current.Memory, barW),
		renderGauge("Disk", m.current.Disk, barW),
		renderGauge("Network", m.current.Network, barW),
	)

	spark := lipgloss.JoinVertical(lipgloss.Left,
		dimStyle.Render(fmt.Sprintf("last hour (%d samples)", len(m.history))),
		renderSparkline("cpu", m.history, func(s models.SystemMetrics) int { return s.CPU }),
		renderSparkline("mem", m.history, func(s models.SystemMetrics) int { return s.Memory }),
		renderSparkline("net", m.history, func(s models.SystemMetrics) int { return s.Network }),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(max(20, m.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("System Metrics"),
				"",
				rows,
				"",
				spark,
				"",
				dimStyle.Render("sampled "+m.current.Timestamp.Format("15:04:05")),
			),
		),
	)
}

func renderGauge(label string, value, width int) string {
	filled := value * width / 100
	if filled > width {
		filled = width
	}
	style := okStyle
	if value >= 80 {
		style = hotStyle
	} else if value >= 60 {
		style = lipgloss.NewStyle().Foreground(yellow)
	}
	bar := style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
	return lipgloss.JoinHorizontal(lipgloss.Left,
		lipgloss.NewStyle().Width(9).Foreground(slate).Render(label),
		bar,
		fmt.Sprintf(" %3d%%", value),
	)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func renderSparkline(label string, history []models.SystemMetrics, pick func(models.SystemMetrics) int) string {
	const maxPoints = 48
	if len(history) > maxPoints {
		history = history[len(history)-maxPoints:]
	}
	var b strings.Builder
	for _, s := range history {
		idx := pick(s) * (len(sparkRunes) - 1) / 100
		b.WriteRune(sparkRunes[idx])
	}
	return lipgloss.JoinHorizontal(lipgloss.Left,
		lipgloss.NewStyle().Width(9).Foreground(slate).Render(label),
		lipgloss.NewStyle().Foreground(accent).Render(b.String()),
	)
}
