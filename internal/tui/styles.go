package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pipedeck/pipedeck/models"
)

var (
	accent   = lipgloss.Color("#38BDF8") // sky
	green    = lipgloss.Color("#22C55E")
	yellow   = lipgloss.Color("#F59E0B")
	red      = lipgloss.Color("#EF4444")
	slate    = lipgloss.Color("#94A3B8")
	slateDim = lipgloss.Color("#64748B")
	panelBg  = lipgloss.Color("#111827")
	bgDark   = lipgloss.Color("#0B1220")
	line     = lipgloss.Color("#1F2937")
	ink      = lipgloss.Color("#E5E7EB")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ink).
			Background(bgDark).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			BorderForeground(accent).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(line).
			Background(panelBg).
			Padding(1, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(line).
			Background(panelBg).
			Padding(1, 1)

	panelHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ink)

	mutedBadgeStyle = lipgloss.NewStyle().
			Foreground(slate).
			Background(bgDark).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(line).
			Padding(0, 1)

	keycapStyle = lipgloss.NewStyle().
			Foreground(ink).
			Background(lipgloss.Color("#1E293B")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(line).
			Padding(0, 1)

	runningBadge = lipgloss.NewStyle().Foreground(bgDark).Background(accent).Padding(0, 1)
	successBadge = lipgloss.NewStyle().Foreground(bgDark).Background(green).Padding(0, 1)
	failedBadge  = lipgloss.NewStyle().Foreground(bgDark).Background(red).Padding(0, 1)
	pendingBadge = lipgloss.NewStyle().Foreground(bgDark).Background(yellow).Padding(0, 1)

	okStyle  = lipgloss.NewStyle().Foreground(green)
	hotStyle = lipgloss.NewStyle().Bold(true).Foreground(red)
	dimStyle = lipgloss.NewStyle().Foreground(slateDim)
)

func statusBadge(status models.PipelineStatus) string {
	switch status {
	case models.StatusRunning:
		return runningBadge.Render(string(status))
	case models.StatusSuccess:
		return successBadge.Render(string(status))
	case models.StatusFailed:
		return failedBadge.Render(string(status))
	default:
		return pendingBadge.Render(string(status))
	}
}

func stageGlyph(status models.StageStatus) string {
	switch status {
	case models.StageSuccess:
		return okStyle.Render("●")
	case models.StageFailed:
		return hotStyle.Render("✕")
	case models.StageRunning:
		return lipgloss.NewStyle().Foreground(accent).Render("◐")
	case models.StageSkipped:
		return dimStyle.Render("~")
	default:
		return dimStyle.Render("○")
	}
}
