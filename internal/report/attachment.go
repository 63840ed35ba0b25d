package report

import (
	"bytes"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/ethpandaops/e2e-harness/internal/config"
)

type attachmentData struct {
	Href        string
	FileName    string
	Description string
}

var (
	videoCard = template.Must(template.New("video").Parse(`<div class='card test-video'>
<h5 class='card-title'>Test Execution Video</h5>
<a href='{{ .Href }}' download>Download Video</a>
<video controls><source src='{{ .Href }}' type='video/webm'>Your browser does not support the video tag.</video>
</div>`))

	traceCard = template.Must(template.New("trace").Parse(`<div class='card test-trace'>
<h5 class='card-title'>Test Execution Trace</h5>
<a href='{{ .Href }}' download>Download Trace</a>
<p>Open with <code>playwright show-trace {{ .FileName }}</code> to step through the recorded actions.</p>
</div>`))

	genericCard = template.Must(template.New("generic").Parse(`<div class='card'>
<h5 class='card-title'>{{ .Description }}</h5>
<a href='{{ .Href }}' download>Download File</a>
</div>`))
)

// AttachmentHTML renders an attachment card chosen by file extension: .webm
// files link into Videos/, .zip files into Traces/, anything else links
// relative to the report directory.
func AttachmentHTML(reportDir, path, description string) template.HTML {
	data := attachmentData{
		FileName:    filepath.Base(path),
		Description: description,
	}

	tmpl := genericCard

	switch strings.ToLower(filepath.Ext(path)) {
	case ".webm":
		tmpl = videoCard
		data.Href = config.VideosDirName + "/" + data.FileName
	case ".zip":
		tmpl = traceCard
		data.Href = config.TracesDirName + "/" + data.FileName
	default:
		data.Href = relativeHref(reportDir, path)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return template.HTML(template.HTMLEscapeString(description)) //nolint:gosec // escaped
	}

	//nolint:gosec // produced by html/template
	return template.HTML(buf.String())
}

func relativeHref(reportDir, path string) string {
	if reportDir != "" {
		if rel, err := filepath.Rel(reportDir, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}

	return filepath.Base(path)
}
