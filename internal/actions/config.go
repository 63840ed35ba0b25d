// Package actions contains the operations behind the CLI and the interactive
// menu.
package actions

import (
	"fmt"

	"github.com/ethpandaops/e2e-harness/internal/config"
)

// ShowConfig prints the merged configuration. Secrets are masked.
func ShowConfig(opts config.LoadOptions) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(cfg.String())

	return nil
}
