package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipedeck/pipedeck/internal/config"
	"github.com/pipedeck/pipedeck/internal/gateway"
	"github.com/pipedeck/pipedeck/internal/monitor"
	"github.com/pipedeck/pipedeck/internal/notify"
	"github.com/pipedeck/pipedeck/internal/provider"
)

var servePort int
var serveLogDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pipedeck gateway daemon",
	Long: `Starts the pipedeck gateway: a long-running daemon that polls GitHub
Actions on a schedule and exposes the normalized dashboard over a local
HTTP API (default: http://127.0.0.1:6270).

Example schedules:
  "@every 5m"   — every five minutes
  "0 * * * *"   — on the hour
  "@hourly"     — same thing

Quick API reference:
  GET  /health                          liveness check
  GET  /api/status                      dashboard status snapshot
  GET  /api/pipelines                   list normalized pipelines
  GET  /api/pipelines/:id/logs          plain-text run logs
  POST /api/pipelines/:id/trigger       dispatch the workflow again
  POST /api/pipelines/:id/cancel        cancel the run
  POST /api/pipelines/:id/rerun         re-run the workflow
  POST /api/refresh                     force a provider refresh
  GET  /api/repositories                watched repository details
  GET  /api/metrics                     newest system metrics sample
  GET  /api/metrics/history?hours=N     rolling metrics window
  GET  /events                          SSE stream of live events`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"HTTP port to listen on (default 6270, overrides config)")
	serveCmd.Flags().StringVar(&serveLogDir, "log-dir", "logs",
		"directory to write gateway logs for later inspection")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down gateway gracefully...")
		cancel()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logFilePath, closeLog, err := setupServeFileLogger(serveLogDir)
	if err != nil {
		return fmt.Errorf("initialising gateway logger: %w", err)
	}
	defer closeLog()

	if servePort > 0 {
		cfg.Gateway.Port = servePort
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 6270
	}

	gh, err := provider.NewGitHub(cfg.GitHub)
	if err != nil {
		return fmt.Errorf("building GitHub client: %w", err)
	}

	svc := monitor.New(cfg, gh)
	defer svc.Close()

	notifier := notify.NewDispatcher(cfg.Notify)

	fmt.Printf("pipedeck gateway starting\n")
	fmt.Printf("  Owner      : %s\n", cfg.Watch.Owner)
	fmt.Printf("  Repos      : %d watched\n", len(cfg.Watch.Repos))
	fmt.Printf("  Schedule   : %s\n", cfg.Gateway.RefreshSchedule)
	fmt.Printf("  API        : http://127.0.0.1:%d\n", cfg.Gateway.Port)
	fmt.Printf("  Events     : http://127.0.0.1:%d/events\n", cfg.Gateway.Port)
	fmt.Printf("  Logs       : %s\n\n", logFilePath)
	fmt.Println("Press Ctrl+C to stop gracefully.")
	fmt.Println()

	slog.Info("gateway logger initialised", "file", logFilePath)
	gw := gateway.New(cfg, svc, notifier)
	return gw.Start(ctx)
}

func setupServeFileLogger(logDir string) (string, func(), error) {
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating log dir %s: %w", logDir, err)
	}

	ts := time.Now().UTC().Format("20060102-150405")
	runLogPath := filepath.Join(logDir, fmt.Sprintf("gateway-%s.log", ts))
	runFile, err := os.OpenFile(runLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("opening run log file: %w", err)
	}

	latestPath := filepath.Join(logDir, "gateway.log")
	latestFile, err := os.OpenFile(latestPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = runFile.Close()
		return "", nil, fmt.Errorf("opening latest log file: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, runFile, latestFile), &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	slog.SetDefault(slog.New(handler))
	slog.SetLogLoggerLevel(level)

	cleanup := func() {
		_ = latestFile.Close()
		_ = runFile.Close()
	}
	return runLogPath, cleanup, nil
}
