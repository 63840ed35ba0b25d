package cmd

import (
	"fmt"

	"github.com/ethpandaops/e2e-harness/internal/actions"
	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/spf13/cobra"
)

var (
	cleanDir   string
	forceClean bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the artifacts of previous runs",
	Long: `Shows what the results directory holds and deletes it: the HTML report,
videos, traces, transcripts and screenshots.

⚠️  WARNING: This permanently deletes every artifact of previous runs!`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if !forceClean {
			if err := actions.Clean(cleanDir, false, false); err != nil {
				return err
			}

			fmt.Println("Use --force flag to proceed with clean")

			return nil
		}

		if err := actions.Clean(cleanDir, false, true); err != nil {
			return fmt.Errorf("clean failed: %w", err)
		}

		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVar(&cleanDir, "dir", config.ResultsDir, "Results directory")
	cleanCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation and delete")
	rootCmd.AddCommand(cleanCmd)
}
