package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pipedeck/pipedeck/internal/config"
	"github.com/pipedeck/pipedeck/internal/monitor"
	"github.com/pipedeck/pipedeck/internal/provider"
	"github.com/pipedeck/pipedeck/models"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a one-shot dashboard snapshot as YAML",
	Long: `Performs a single provider refresh and writes the normalized dashboard
state (pipelines, repositories, metrics) as YAML to stdout or a file.

Useful for piping into other tools or archiving the dashboard state:
  pipedeck export -o snapshot.yaml`,
	RunE: runExport,
}

// snapshot is the YAML document shape written by export.
type snapshot struct {
	ExportedAt   time.Time                      `yaml:"exported_at"`
	Owner        string                         `yaml:"owner"`
	Pipelines    []models.Pipeline              `yaml:"pipelines"`
	Repositories []models.Repository            `yaml:"repositories"`
	Metrics      *models.SystemMetrics          `yaml:"metrics,omitempty"`
	Tests        []models.TestResult            `yaml:"tests"`
	Environments []models.DeploymentEnvironment `yaml:"environments"`
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "",
		"output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	if err := svc.Refresh(context.Background()); err != nil {
		slog.Warn("Refresh failed, exporting fallback data", "error", err)
	}

	snap := snapshot{
		ExportedAt:   time.Now().UTC(),
		Owner:        cfg.Watch.Owner,
		Pipelines:    svc.Pipelines(),
		Repositories: svc.Repositories(),
		Metrics:      svc.CurrentMetrics(),
		Tests:        svc.TestResults(),
		Environments: svc.DeploymentEnvironments(),
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("serialising snapshot: %w", err)
	}

	if exportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", exportOut, err)
	}
	fmt.Printf("Snapshot written to %s (%d pipelines)\n", exportOut, len(snap.Pipelines))
	return nil
}
