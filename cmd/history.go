package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethpandaops/e2e-harness/internal/actions"
	"github.com/spf13/cobra"
)

var forceHistorySetup bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the ClickHouse results history",
	Long: `The results history keeps every test execution and artifact of every run in
ClickHouse, configured under Reporting.History.`,
}

var historySetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the history database and run its migrations",
	Long: `Validates configuration and prepares the results history.
This command will:
- Test the ClickHouse connection
- Create the history database if it doesn't exist
- Run the history migrations`,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if !forceHistorySetup {
			if err := actions.HistorySetup(ctx, Logger, LoadOptions(), false, false); err != nil {
				return err
			}

			fmt.Println("Use --force flag to proceed with setup")

			return nil
		}

		if err := actions.HistorySetup(ctx, Logger, LoadOptions(), false, true); err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}

		return nil
	},
}

var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied history migration",
	RunE: func(_ *cobra.Command, _ []string) error {
		return actions.HistoryStatus(LoadOptions())
	},
}

func init() {
	historySetupCmd.Flags().BoolVarP(&forceHistorySetup, "force", "f", false, "Skip confirmation and proceed with setup")
	historyCmd.AddCommand(historySetupCmd, historyStatusCmd)
	rootCmd.AddCommand(historyCmd)
}
