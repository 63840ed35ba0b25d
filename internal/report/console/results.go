package console

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/e2e-harness/internal/format"
	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/sirupsen/logrus"
)

const maxDetailLength = 50

// ResultsFormatter formats test results as a table.
type ResultsFormatter struct {
	log      logrus.FieldLogger
	renderer Renderer
	colors   *ColorHelper
}

// NewResultsFormatter creates a new results table formatter.
func NewResultsFormatter(log logrus.FieldLogger, renderer Renderer) *ResultsFormatter {
	return &ResultsFormatter{
		log:      log.WithField("component", "console.results_formatter"),
		renderer: renderer,
		colors:   NewColorHelper(),
	}
}

// Format converts test metrics into a formatted table string with failure details.
func (f *ResultsFormatter) Format(testMetrics []metrics.TestExecutionMetric) string {
	if len(testMetrics) == 0 {
		return "No tests executed"
	}

	var (
		headers     = []string{"Test", "Status", "Category", "Duration", "Details"}
		rows        = make([][]string, 0, len(testMetrics))
		failedTests = make([]metrics.TestExecutionMetric, 0)
	)

	for _, metric := range testMetrics {
		var details string

		if metric.Failed() {
			failedTests = append(failedTests, metric)

			if metric.FailureStep != "" {
				details = f.colors.Failure("at " + metric.FailureStep)
			}

			if metric.ErrorMessage != "" {
				if details != "" {
					details += " - "
				}

				details += f.colors.Muted(format.Truncate(firstLine(metric.ErrorMessage), maxDetailLength))
			}
		}

		rows = append(rows, []string{
			metric.TestName,
			f.colors.FormatOutcome(outcomeOf(metric)),
			metric.Category,
			format.Duration(metric.Duration),
			details,
		})
	}

	output := f.renderer.Render(Section{Title: "Test Results", Headers: headers, Rows: rows})

	if len(failedTests) > 0 {
		output += f.formatFailureDetails(failedTests)
	}

	return output
}

// formatFailureDetails creates a detailed section for every failed test
func (f *ResultsFormatter) formatFailureDetails(failedTests []metrics.TestExecutionMetric) string {
	var builder strings.Builder

	builder.WriteString("\n\n" + f.colors.Header("▸ Failed Test Details") + "\n\n")

	for i, test := range failedTests {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString(fmt.Sprintf("%s (%s)\n", test.TestName, format.Duration(test.Duration)))

		if test.FailureStep != "" {
			builder.WriteString(fmt.Sprintf("  %s: %s\n", f.colors.Info("Step"), test.FailureStep))
		}

		if test.ErrorMessage == "" {
			builder.WriteString(fmt.Sprintf("  %s: Test failed (no details available)\n", f.colors.Failure("Error")))

			continue
		}

		builder.WriteString(fmt.Sprintf("  %s: %s\n", f.colors.Failure("Error"), test.ErrorMessage))
	}

	return builder.String()
}

func outcomeOf(m metrics.TestExecutionMetric) metrics.Outcome {
	if m.Outcome != "" {
		return m.Outcome
	}

	if m.Passed {
		return metrics.OutcomePassed
	}

	return metrics.OutcomeFailed
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")

	return line
}
