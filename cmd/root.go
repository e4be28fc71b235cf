package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pipedeck",
	Short: "CI/CD pipeline dashboard for GitHub Actions",
	Long: `pipedeck watches GitHub Actions workflow runs across a set of
repositories and normalizes them into a single pipeline dashboard with
per-stage progress, system metrics, and live updates.

Get started:
  pipedeck init       Interactive setup wizard
  pipedeck serve      Start the dashboard gateway (REST + SSE)
  pipedeck ui         Launch the terminal dashboard
  pipedeck export     Write a one-shot snapshot of the dashboard as YAML
  pipedeck config     View configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.pipedeck/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		initCmd,
		serveCmd,
		uiCmd,
		exportCmd,
		configCmd,
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}
