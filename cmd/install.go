package cmd

import (
	"fmt"

	"github.com/ethpandaops/e2e-harness/internal/actions"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install [browser...]",
	Short: "Install the browser driver and browsers",
	Long: `Downloads the browser automation driver and browsers. Without arguments the
driver's default browser set is installed.

Example:
  e2e-harness install
  e2e-harness install chromium firefox`,
	RunE: func(_ *cobra.Command, args []string) error {
		if err := actions.Install(Logger, args); err != nil {
			return fmt.Errorf("install failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
