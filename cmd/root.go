// Package cmd contains CLI command definitions
package cmd

import (
	"fmt"
	"os"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Logger is the shared logger instance for all commands
	Logger *logrus.Logger

	envFile     string
	environment string
	configDir   string
	verbose     bool

	rootCmd = &cobra.Command{
		Use:   "e2e-harness",
		Short: "E2E Harness - browser end-to-end test tooling",
		Long: `E2E Harness prepares, inspects and cleans up browser end-to-end test runs.

Tests themselves run with "go test"; this tool scaffolds settings, installs
browsers, shows the merged configuration, summarises finished runs and manages
the optional ClickHouse results history.

Run without arguments to launch interactive mode, or use subcommands for direct operations.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				Logger.SetLevel(logrus.DebugLevel)
			}
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// InitLogger sets up the shared logger from LOG_LEVEL.
func InitLogger() {
	Logger = newLogger(false)
}

// LoadOptions returns the settings lookup selected by the persistent flags.
func LoadOptions() config.LoadOptions {
	return config.LoadOptions{
		Dir:         configDir,
		Environment: environment,
		EnvFile:     envFile,
	}
}

func init() {
	InitLogger()

	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Env file loaded before settings (default .env)")
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "Settings environment (default from ASPNETCORE_ENVIRONMENT or TEST_ENVIRONMENT)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding appsettings files (default from E2E_CONFIG_DIR or the nearest parent)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
