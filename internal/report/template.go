package report

import (
	"html/template"
	"strings"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/format"
)

type pageData struct {
	Title      string
	ReportName string
	Theme      string
	Started    time.Time
	Generated  time.Time
	SystemInfo []systemInfo
	RunnerLogs []template.HTML
	Entries    []entryView
	Counts     map[string]int
}

var pageTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"duration": format.Duration,
	"lower":    strings.ToLower,
	"clock": func(t time.Time) string {
		return t.Format("15:04:05")
	},
	"stamp": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05")
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
</head>
<body class="theme-{{ lower .Theme }}">
<h1>{{ .ReportName }}</h1>
<p>Started {{ stamp .Started }}, generated {{ stamp .Generated }}</p>
<section class="dashboard-view">
<h2>Dashboard</h2>
<ul class="test-stats">
<li>Pass: {{ index .Counts "pass" }}</li>
<li>Fail: {{ index .Counts "fail" }}</li>
<li>Skip: {{ index .Counts "skip" }}</li>
<li>Warning: {{ index .Counts "warning" }}</li>
<li>Error: {{ index .Counts "error" }}</li>
</ul>
{{- if .SystemInfo }}
<table class="environment-info">
{{- range .SystemInfo }}
<tr><th>{{ .Key }}</th><td>{{ .Value }}</td></tr>
{{- end }}
</table>
{{- end }}
{{- range .RunnerLogs }}
{{ . }}
{{- end }}
</section>
<section class="tests">
{{- range .Entries }}
<article class="test status-{{ .Status }}">
<h3>{{ .Name }} <small>{{ .Status }}</small></h3>
<p>{{ .Category }} · started {{ stamp .Started }}{{ if .Duration }} · {{ duration .Duration }}{{ end }}</p>
<table class="events">
{{- range .Events }}
<tr class="event-{{ .Status }}">
<td>{{ clock .Time }}</td>
<td>{{ .Status }}</td>
<td>{{ if .HTML }}{{ .HTML }}{{ else }}{{ .Message }}{{ if .Detail }}<pre>{{ .Detail }}</pre>{{ end }}{{ end }}</td>
</tr>
{{- end }}
</table>
</article>
{{- end }}
</section>
</body>
</html>
`))
