package cmd

import (
	"fmt"

	"github.com/ethpandaops/e2e-harness/internal/actions"
	"github.com/spf13/cobra"
)

var showConfigCmd = &cobra.Command{
	Use:   "show-config",
	Short: "Display the merged test settings",
	Long: `Shows the settings tests would run with: defaults, appsettings.json, the
environment overlay and Section__Key environment variables, merged in that order.
Secrets are masked.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := actions.ShowConfig(LoadOptions()); err != nil {
			return fmt.Errorf("failed to show config: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(showConfigCmd)
}
