package console

import (
	"fmt"

	"github.com/ethpandaops/e2e-harness/internal/format"
	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/sirupsen/logrus"
)

// SummaryFormatter formats summary statistics as a table.
type SummaryFormatter struct {
	log      logrus.FieldLogger
	renderer Renderer
	colors   *ColorHelper
}

// NewSummaryFormatter creates a new summary table formatter.
func NewSummaryFormatter(log logrus.FieldLogger, renderer Renderer) *SummaryFormatter {
	return &SummaryFormatter{
		log:      log.WithField("component", "console.summary_formatter"),
		renderer: renderer,
		colors:   NewColorHelper(),
	}
}

// Format converts summary metrics and timing analysis into a formatted table string.
func (f *SummaryFormatter) Format(summary metrics.SummaryMetric, analysis metrics.Analysis) string {
	executed := summary.PassedTests + summary.FailedTests

	var passRate float64
	if executed > 0 {
		passRate = float64(summary.PassedTests) / float64(executed) * 100.0
	}

	passedValue := fmt.Sprintf("%d (%s)", summary.PassedTests, f.colors.FormatPercentage(passRate))
	if summary.PassedTests == executed {
		passedValue = f.colors.Success(fmt.Sprintf("%d (%.1f%%)", summary.PassedTests, passRate))
	}

	failedValue := fmt.Sprintf("%d", summary.FailedTests)
	if summary.FailedTests > 0 {
		failedValue = f.colors.Failure(failedValue)
	} else {
		failedValue = f.colors.Success(failedValue)
	}

	skippedValue := f.colors.Muted(fmt.Sprintf("%d", summary.SkippedTests))

	var (
		headers = []string{"Metric", "Value"}
		rows    = [][]string{
			{"Total Tests", f.colors.Bold(fmt.Sprintf("%d", summary.TotalTests))},
			{"Passed", passedValue},
			{"Failed", failedValue},
			{"Skipped", skippedValue},
			{"Total Duration", format.Duration(summary.TotalDuration)},
		}
	)

	if analysis.TotalTests > 0 {
		rows = append(rows,
			[]string{"Average Duration", format.Seconds(analysis.AverageDuration)},
			[]string{"Slowest Test", fmt.Sprintf("%s (%s)", analysis.Slowest.TestName, format.Seconds(analysis.Slowest.Duration))},
			[]string{"Fastest Test", fmt.Sprintf("%s (%s)", analysis.Fastest.TestName, format.Seconds(analysis.Fastest.Duration))},
		)
	}

	rows = append(rows, []string{
		"Artifacts",
		fmt.Sprintf("%d (%s)", summary.Artifacts, format.Bytes(summary.TotalArtifactSize)),
	})

	return f.renderer.Render(Section{Title: "Summary", Headers: headers, Rows: rows})
}
