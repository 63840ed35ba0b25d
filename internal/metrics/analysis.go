package metrics

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Analysis summarises the last run of every test.
type Analysis struct {
	TotalTests      int
	AverageDuration time.Duration
	Slowest         TestExecutionMetric
	Fastest         TestExecutionMetric
	Failures        []TestExecutionMetric
}

// Analyze computes timing and failure statistics. Ties for slowest and
// fastest go to the earliest test in the input. Skipped runs count towards
// timing but never as failures.
func Analyze(latest []TestExecutionMetric) Analysis {
	analysis := Analysis{TotalTests: len(latest)}
	if len(latest) == 0 {
		return analysis
	}

	var total time.Duration

	analysis.Slowest = latest[0]
	analysis.Fastest = latest[0]

	for _, m := range latest {
		total += m.Duration

		if m.Duration > analysis.Slowest.Duration {
			analysis.Slowest = m
		}

		if m.Duration < analysis.Fastest.Duration {
			analysis.Fastest = m
		}

		if m.Failed() {
			analysis.Failures = append(analysis.Failures, m)
		}
	}

	analysis.AverageDuration = total / time.Duration(len(latest))

	return analysis
}

var reportTemplate = template.Must(template.New("analysis").Funcs(template.FuncMap{
	"seconds": func(d time.Duration) string {
		return formatSeconds(d)
	},
}).Parse(`<div class='test-analysis'>
<div class='timing-stats'>
<h4>⏱️ Timing Analysis</h4>
<p>Average Duration: {{ seconds .AverageDuration }} seconds</p>
<p>Slowest Test: {{ .Slowest.TestName }} ({{ seconds .Slowest.Duration }}s)</p>
<p>Fastest Test: {{ .Fastest.TestName }} ({{ seconds .Fastest.Duration }}s)</p>
</div>
{{- if .Failures }}
<div class='failure-patterns'>
<h4>❌ Failure Analysis</h4>
{{- range .Failures }}
<div class='failure-item'>
<p><strong>{{ .TestName }}</strong></p>
<p>Failed at step: {{ .FailureStep }}</p>
<p>Category: {{ .Category }}</p>
</div>
{{- end }}
</div>
{{- end }}
</div>`))

// RenderReport renders the analysis as an HTML fragment. An analysis of zero
// tests renders as the empty string.
func RenderReport(analysis Analysis) template.HTML {
	if analysis.TotalTests == 0 {
		return ""
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, analysis); err != nil {
		return template.HTML(template.HTMLEscapeString(err.Error())) //nolint:gosec // escaped above
	}

	//nolint:gosec // produced by html/template
	return template.HTML(buf.String())
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}
