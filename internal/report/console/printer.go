package console

import (
	"fmt"
	"io"

	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Snapshot is the data a Printer renders. It is also the shape persisted to
// metrics.json so a finished run can be summarised later.
type Snapshot struct {
	RunID     string                        `json:"run_id"`
	Summary   metrics.SummaryMetric         `json:"summary"`
	Tests     []metrics.TestExecutionMetric `json:"tests"`
	Artifacts []metrics.ArtifactMetric      `json:"artifacts"`
}

// Printer writes the console summary of a run
type Printer struct {
	writer    io.Writer
	results   *ResultsFormatter
	artifacts *ArtifactsFormatter
	summary   *SummaryFormatter
}

// NewPrinter creates a printer writing to w
func NewPrinter(log logrus.FieldLogger, w io.Writer) *Printer {
	renderer := NewRenderer(log)

	return &Printer{
		writer:    w,
		results:   NewResultsFormatter(log, renderer),
		artifacts: NewArtifactsFormatter(log, renderer),
		summary:   NewSummaryFormatter(log, renderer),
	}
}

// Print renders every section of the snapshot.
func (p *Printer) Print(snapshot *Snapshot) {
	fmt.Fprintln(p.writer, p.results.Format(snapshot.Tests))

	if out := p.artifacts.Format(snapshot.Artifacts); out != "" {
		fmt.Fprintln(p.writer, out)
	}

	fmt.Fprintln(p.writer, p.summary.Format(snapshot.Summary, metrics.Analyze(snapshot.Tests)))
}

// SnapshotOf captures the current state of a collector.
func SnapshotOf(runID string, collector metrics.Collector) *Snapshot {
	return &Snapshot{
		RunID:     runID,
		Summary:   collector.GetSummary(),
		Tests:     collector.GetTestMetrics(),
		Artifacts: collector.GetArtifactMetrics(),
	}
}
