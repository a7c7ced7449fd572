// Package main is the entry point of the statistics portal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/statportal/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	baseURL    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "statportal",
		Short:         "Statistics portal server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = observability.GetGlobalLogger().Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", getEnvOrDefault("STATPORTAL_CONFIG_PATH", "statportal.yaml"),
		"Path to configuration file")
	pf.StringVar(&flags.logLevel, "log-level", getEnvOrDefault("STATPORTAL_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error); overrides the configuration")
	pf.StringVar(&flags.logFormat, "log-format", getEnvOrDefault("STATPORTAL_LOG_FORMAT", ""),
		"Log format (json, console); overrides the configuration")
	pf.StringVar(&flags.baseURL, "api", getEnvOrDefault("STATPORTAL_API_URL", ""),
		"Statistics API base URL; overrides the configuration")

	root.AddCommand(
		newServeCmd(flags),
		newTableCmd(flags),
		newSearchCmd(flags),
		newVersionCmd(),
	)
	return root
}
