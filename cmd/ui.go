package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pipedeck/pipedeck/internal/config"
	"github.com/pipedeck/pipedeck/internal/monitor"
	"github.com/pipedeck/pipedeck/internal/provider"
	"github.com/pipedeck/pipedeck/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal dashboard",
	Long:  `Opens the interactive terminal UI for watching pipelines, stage progress, system metrics, tests, and deployment environments.`,
	RunE:  runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	gh, err := provider.NewGitHub(cfg.GitHub)
	if err != nil {
		return fmt.Errorf("building GitHub client: %w", err)
	}

	svc := monitor.New(cfg, gh)
	defer svc.Close()

	// Warm the cache in the background so the UI opens immediately; on
	// failure the fallback dataset is already installed.
	go func() {
		if err := svc.Refresh(context.Background()); err != nil {
			slog.Warn("Initial refresh failed, showing fallback data", "error", err)
		}
	}()

	app := tui.NewApp(svc)
	return app.Run()
}
