package actions

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ethpandaops/e2e-harness/internal/report/console"
	"github.com/sirupsen/logrus"
)

// Summary prints the console summary of a finished run from its metrics.json.
func Summary(log logrus.FieldLogger, path string, w io.Writer) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path chosen by the operator
	if err != nil {
		return fmt.Errorf("failed to read run metrics: %w", err)
	}

	var snapshot console.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if snapshot.RunID != "" {
		fmt.Fprintf(w, "Run %s\n\n", snapshot.RunID)
	}

	console.NewPrinter(log, w).Print(&snapshot)

	return nil
}
