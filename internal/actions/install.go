package actions

import (
	"fmt"

	"github.com/ethpandaops/e2e-harness/internal/browser"
	"github.com/sirupsen/logrus"
)

// Install downloads the browser driver and the named browsers.
func Install(log logrus.FieldLogger, browsers []string) error {
	fmt.Println("\n📥 Installing browser driver...")

	if err := browser.Install(log, browsers...); err != nil {
		return err
	}

	fmt.Println("✅ Browsers installed!")

	return nil
}
