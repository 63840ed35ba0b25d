package console

import (
	"path/filepath"

	"github.com/ethpandaops/e2e-harness/internal/format"
	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/sirupsen/logrus"
)

// ArtifactsFormatter formats persisted artifacts as a table.
type ArtifactsFormatter struct {
	log      logrus.FieldLogger
	renderer Renderer
	colors   *ColorHelper
}

// NewArtifactsFormatter creates a new artifacts table formatter.
func NewArtifactsFormatter(log logrus.FieldLogger, renderer Renderer) *ArtifactsFormatter {
	return &ArtifactsFormatter{
		log:      log.WithField("component", "console.artifacts_formatter"),
		renderer: renderer,
		colors:   NewColorHelper(),
	}
}

// Format lists every artifact with its owning test, kind and size.
func (f *ArtifactsFormatter) Format(artifacts []metrics.ArtifactMetric) string {
	if len(artifacts) == 0 {
		return ""
	}

	var (
		headers = []string{"Test", "Kind", "File", "Size"}
		rows    = make([][]string, 0, len(artifacts))
	)

	for _, a := range artifacts {
		kind := string(a.Kind)
		if a.Kind == metrics.ArtifactTrace || a.Kind == metrics.ArtifactScreenshot {
			kind = f.colors.Warning(kind)
		}

		rows = append(rows, []string{
			a.TestName,
			kind,
			f.colors.Muted(filepath.Base(a.Path)),
			format.Bytes(a.SizeBytes),
		})
	}

	return f.renderer.Render(Section{Title: "Artifacts", Headers: headers, Rows: rows})
}
