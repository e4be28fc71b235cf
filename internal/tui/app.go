package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pipedeck/pipedeck/internal/monitor"
)

// Tab represents a TUI navigation tab.
type Tab int

const (
	TabPipelines Tab = iota
	TabMetrics
	TabTests
	TabEnvironments
)

var tabNames = []string{"Pipelines", "Metrics", "Tests", "Environments"}
var tabCompactNames = []string{"Pipes", "Metrics", "Tests", "Envs"}
var tabTinyNames = []string{"P", "M", "T", "E"}

// App is the root bubbletea model.
type App struct {
	svc       *monitor.Service
	width     int
	height    int
	activeTab Tab
	pipelines PipelinesModel
	metrics   MetricsModel
}

// NewApp creates the TUI application around an aggregation service handle.
func NewApp(svc *monitor.Service) *App {
	return &App{
		svc:       svc,
		pipelines: NewPipelinesModel(svc),
		metrics:   NewMetricsModel(svc),
	}
}

// Run starts the bubbletea program.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.pipelines.Init(),
		a.metrics.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentW := msg.Width - 2
		if contentW < 20 {
			contentW = 20
		}
		contentH := msg.Height - 7
		if contentH < 8 {
			contentH = 8
		}
		a.pipelines.SetSize(contentW, contentH)
		a.metrics.SetSize(contentW, contentH)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.activeTab = TabPipelines
		case "2":
			a.activeTab = TabMetrics
		case "3":
			a.activeTab = TabTests
		case "4":
			a.activeTab = TabEnvironments
		case "tab":
			a.activeTab = (a.activeTab + 1) % Tab(len(tabNames))
		case "shift+tab":
			a.activeTab--
			if a.activeTab < 0 {
				a.activeTab = Tab(len(tabNames) - 1)
			}
		}
	}

	// Delegate to active view; ticks keep flowing to both data views.
	newPipes, cmd := a.pipelines.Update(msg)
	a.pipelines = newPipes.(PipelinesModel)
	cmds = append(cmds, cmd)
	newMetrics, cmd := a.metrics.Update(msg)
	a.metrics = newMetrics.(MetricsModel)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	nav := a.renderTabs()

	var content string
	switch a.activeTab {
	case TabPipelines:
		content = a.pipelines.View()
	case TabMetrics:
		content = a.metrics.View()
	case TabTests:
		content = a.renderTests()
	case TabEnvironments:
		content = a.renderEnvironments()
	}

	contentBox := lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		MaxHeight(max(1, a.height-4)).
		Render(content)

	status := lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(slateDim).
		Render("tab next  shift+tab prev  1-4 jump  q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		nav,
		contentBox,
		status,
	)
}

func (a *App) renderTests() string {
	rows := ""
	for _, t := range a.svc.TestResults() {
		mark := okStyle.Render("PASS")
		if t.Status == "failed" {
			mark = hotStyle.Render("FAIL")
		}
		detail := fmt.Sprintf("%.1fs", t.Duration)
		if t.Error != "" {
			detail += "  " + t.Error
		}
		rows += lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Width(6).Render(mark),
			lipgloss.NewStyle().Width(12).Foreground(slate).Render(t.Suite),
			lipgloss.NewStyle().Width(32).Foreground(ink).Render(truncate(t.Name, 30)),
			dimStyle.Render(detail),
		) + "\n"
	}
	return panelStyle.Width(max(20, a.width-4)).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			panelHeaderStyle.Render("Test Results"),
			"",
			rows,
		),
	)
}

func (a *App) renderEnvironments() string {
	cards := make([]string, 0, 3)
	for _, env := range a.svc.DeploymentEnvironments() {
		health := okStyle.Render(env.Status)
		if env.Status != "healthy" {
			health = lipgloss.NewStyle().Foreground(yellow).Render(env.Status)
		}
		cards = append(cards, boxStyle.Width(28).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render(env.Name),
				health,
				dimStyle.Render(env.Version+"  up "+env.Uptime),
				dimStyle.Render("deployed "+env.LastDeploy),
				fmt.Sprintf("cpu %d%%  mem %d%%  disk %d%%", env.Resources.CPU, env.Resources.Memory, env.Resources.Disk),
			),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (a *App) renderHeader() string {
	row := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("pipedeck"),
		"  ",
		dimStyle.Render("CI/CD pipeline dashboard"),
		"  ",
		mutedBadgeStyle.Render(" "+tabNames[a.activeTab]+" "),
	)
	return lipgloss.NewStyle().
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(line).
		Width(a.width).
		Padding(0, 1).
		Render(row)
}

func (a *App) renderTabs() string {
	labels := tabNames
	rendered := a.renderTabLabels(labels)
	maxWidth := a.width - 2
	if maxWidth < 10 {
		maxWidth = 10
	}
	if lipgloss.Width(rendered) > maxWidth {
		labels = tabCompactNames
		rendered = a.renderTabLabels(labels)
	}
	if lipgloss.Width(rendered) > maxWidth {
		rendered = a.renderTabLabels(tabTinyNames)
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(slate).
		Render(rendered)
}

func (a *App) renderTabLabels(labels []string) string {
	parts := make([]string, 0, len(labels))
	for i, name := range labels {
		label := fmt.Sprintf("%d:%s", i+1, name)
		if Tab(i) == a.activeTab {
			parts = append(parts, lipgloss.NewStyle().Bold(true).Foreground(accent).Render(label))
		} else {
			parts = append(parts, dimStyle.Render(label))
		}
		if i < len(labels)-1 {
			parts = append(parts, dimStyle.Render("  ·  "))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func renderCounter(label string, count int, style lipgloss.Style, width int) string {
	return boxStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			style.Bold(true).Render(fmt.Sprintf("%d", count)),
			dimStyle.Render(label),
		),
	) + "  "
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return "…" + s[len(s)-limit+1:]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
