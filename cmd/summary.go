package cmd

import (
	"os"
	"path/filepath"

	"github.com/ethpandaops/e2e-harness/internal/actions"
	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/spf13/cobra"
)

var summaryFile string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the summary of the last test run",
	Long: `Prints the results, artifacts and failure analysis of a finished run from the
metrics.json written next to the HTML report.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return actions.Summary(Logger, summaryFile, os.Stdout)
	},
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryFile, "file", "f", filepath.Join(config.ReportsDir, config.MetricsFile), "Run metrics file")
	rootCmd.AddCommand(summaryCmd)
}
