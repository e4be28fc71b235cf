package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pipedeck/pipedeck/internal/config"
	"github.com/pipedeck/pipedeck/internal/localrepo"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard for pipedeck",
	Long: `Walks you through configuring pipedeck:
  - GitHub owner and repositories to watch
  - GitHub token (optional — raises the API rate limit and unlocks
    private repos, run logs, and trigger/cancel/rerun)
  - Gateway port and refresh schedule

If you run it inside a git checkout with a GitHub origin remote, the
owner and repository are prefilled from the remote URL.`,
	RunE: runInit,
}

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#38BDF8")).
	MarginBottom(1)

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#10B981"))

var faintStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6B7280"))

func runInit(cmd *cobra.Command, args []string) error {
	fmt.Println()
	fmt.Println(headerStyle.Render("  pipedeck — CI/CD pipeline dashboard"))
	fmt.Println(faintStyle.Render("  Watches GitHub Actions and turns runs into a live dashboard.\n"))

	// Load existing config or start fresh.
	cfg, err := config.Load(cfgFile)
	if err != nil {
		cfg = &config.Config{}
	}

	owner := cfg.Watch.Owner
	repos := strings.Join(cfg.Watch.Repos, ", ")

	// Prefill from the local checkout when possible.
	if wd, err := os.Getwd(); err == nil {
		if origin, err := localrepo.Detect(wd); err == nil {
			fmt.Println(faintStyle.Render(fmt.Sprintf("  Detected origin remote: %s/%s\n", origin.Owner, origin.Repo)))
			owner = origin.Owner
			if repos == "" || !strings.Contains(repos, origin.Repo) {
				repos = origin.Repo
			}
		}
	}

	token := cfg.GitHub.Token
	port := strconv.Itoa(cfg.Gateway.Port)
	if cfg.Gateway.Port == 0 {
		port = "6270"
	}
	schedule := cfg.Gateway.RefreshSchedule
	if schedule == "" {
		schedule = "@every 5m"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub owner").
				Description("User or organisation whose repositories to watch.").
				Placeholder("vercel").
				Value(&owner).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("owner is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Repositories").
				Description("Comma-separated repository names under the owner.").
				Placeholder("next.js, swr, turborepo").
				Value(&repos).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("at least one repository is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("GitHub token (leave blank for anonymous access)").
				Description("Anonymous works for public repos at 60 requests/hour.").
				Placeholder("ghp_...  (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&token),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Gateway port").
				Value(&port).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 || n > 65535 {
						return fmt.Errorf("port must be a number between 1 and 65535")
					}
					return nil
				}),
			huh.NewInput().
				Title("Refresh schedule").
				Description("Cron expression, e.g. \"@every 5m\" or \"0 * * * *\".").
				Value(&schedule),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("wizard aborted: %w", err)
	}

	cfg.Watch.Owner = strings.TrimSpace(owner)
	cfg.Watch.Repos = splitRepoList(repos)
	if cfg.Watch.RunsPerRepo == 0 {
		cfg.Watch.RunsPerRepo = 5
	}
	cfg.GitHub.Token = strings.TrimSpace(token)
	cfg.Gateway.Port, _ = strconv.Atoi(strings.TrimSpace(port))
	cfg.Gateway.RefreshSchedule = strings.TrimSpace(schedule)
	if cfg.Metrics.IntervalSeconds == 0 {
		cfg.Metrics.IntervalSeconds = 5
	}

	if err := config.Save(cfg, cfgFile); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	path, _ := config.ConfigPath(cfgFile)
	fmt.Println()
	fmt.Println(successStyle.Render("  Configuration saved to " + path))
	fmt.Println(faintStyle.Render("  Next: pipedeck serve  (gateway)  or  pipedeck ui  (terminal dashboard)"))
	fmt.Println()
	return nil
}

func splitRepoList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
