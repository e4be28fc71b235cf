package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pipedeck/pipedeck/internal/monitor"
	"github.com/pipedeck/pipedeck/models"
)

// PipelinesModel shows the normalized pipeline list with per-stage glyphs.
type PipelinesModel struct {
	svc      *monitor.Service
	rows     []models.Pipeline
	cursor   int
	width    int
	height   int
	lastLoad time.Time
	loading  bool
}

// pipesLoadedMsg carries the current pipeline cache snapshot.
type pipesLoadedMsg struct{ rows []models.Pipeline }

// refreshDoneMsg reports a completed (or fallen-back) provider refresh.
type refreshDoneMsg struct{ err error }

// NewPipelinesModel creates a PipelinesModel.
func NewPipelinesModel(svc *monitor.Service) PipelinesModel {
	return PipelinesModel{svc: svc, loading: true}
}

func (m PipelinesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PipelinesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return pipesLoadedMsg{rows: m.svc.Pipelines()}
	}
}

func (m PipelinesModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.svc.Refresh(context.Background())}
	}
}

func (m PipelinesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pipesLoadedMsg:
		m.rows = msg.rows
		m.loading = false
		m.lastLoad = time.Now()
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}
		// Re-read the cache every 10 seconds.
		return m, tea.Tick(10*time.Second, func(time.Time) tea.Msg {
			return m.loadCmd()()
		})
	case refreshDoneMsg:
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.refreshCmd()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *PipelinesModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m PipelinesModel) View() string {
	if m.loading && len(m.rows) == 0 {
		return panelStyle.Width(max(20, m.width-2)).Render("Refreshing pipelines...")
	}

	var running, failed, succeeded int
	for _, p := range m.rows {
		switch p.Status {
		case models.StatusRunning:
			running++
		case models.StatusFailed:
			failed++
		case models.StatusSuccess:
			succeeded++
		}
	}

	cardW := 16
	if m.width >= 100 {
		cardW = 18
	}
	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		renderCounter("Running", running, lipgloss.NewStyle().Bold(true).Foreground(accent), cardW),
		renderCounter("Failed", failed, hotStyle, cardW),
		renderCounter("Succeeded", succeeded, okStyle, cardW),
		renderCounter("Total", len(m.rows), lipgloss.NewStyle().Bold(true).Foreground(ink), cardW),
	)

	lineLimit := m.height - 12
	if lineLimit < 5 {
		lineLimit = 5
	}
	rows := ""
	for i, p := range m.rows {
		if i >= lineLimit {
			break
		}
		stages := ""
		for _, st := range p.Stages {
			stages += stageGlyph(st.Status) + " "
		}
		name := truncate(p.Repository+"/"+p.Name, 32)
		branch := truncate(p.Branch, 14)
		meta := fmt.Sprintf("%s %s %s", p.Commit, p.Author, formatDuration(p.Duration))
		row := lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Width(34).Foreground(ink).Render(name),
			lipgloss.NewStyle().Width(16).Foreground(slate).Render(branch),
			lipgloss.NewStyle().Width(12).Render(statusBadge(p.Status)),
			lipgloss.NewStyle().Width(10).Render(stages),
			dimStyle.Render(meta),
		)
		if i == m.cursor {
			row = lipgloss.NewStyle().
				Background(lipgloss.Color("#0F172A")).
				BorderStyle(lipgloss.NormalBorder()).
				BorderLeft(true).
				BorderForeground(accent).
				Render(row)
		}
		rows += row + "\n"
	}

	if len(m.rows) == 0 {
		rows = dimStyle.Render("No pipelines loaded. Press r to refresh.\n")
	}

	updated := "never"
	if !m.lastLoad.IsZero() {
		updated = m.lastLoad.Format("15:04:05")
	}
	footer := lipgloss.JoinHorizontal(lipgloss.Left,
		keycapStyle.Render("r"),
		" ",
		dimStyle.Render("refresh"),
		"   ",
		keycapStyle.Render("j/k"),
		" ",
		dimStyle.Render("move"),
		"   ",
		dimStyle.Render("updated "+updated),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(0, 1).Render(summary),
		panelStyle.Width(max(20, m.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("Pipelines"),
				dimStyle.Render("Repository/Workflow                Branch          Status      Stages    Details"),
				rows,
				footer,
			),
		),
	)
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), seconds%60)
}
