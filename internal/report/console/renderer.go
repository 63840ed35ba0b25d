// Package console renders run results as terminal tables.
package console

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
)

// Section is one titled table of the console summary.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer draws sections as box tables.
type Renderer interface {
	Render(section Section) string
}

type renderer struct {
	log    logrus.FieldLogger
	colors *ColorHelper
}

// NewRenderer creates a section renderer.
func NewRenderer(log logrus.FieldLogger) Renderer {
	return &renderer{
		log:    log.WithField("component", "console.renderer"),
		colors: NewColorHelper(),
	}
}

func (r *renderer) Render(section Section) string {
	var sb strings.Builder

	if section.Title != "" {
		sb.WriteString("\n" + r.colors.Header("▸ "+section.Title) + "\n\n")
	}

	table := tablewriter.NewWriter(&sb)
	table.SetHeader(section.Headers)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("┼")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.AppendBulk(section.Rows)
	table.Render()

	r.log.WithFields(logrus.Fields{
		"section": section.Title,
		"rows":    len(section.Rows),
	}).Debug("Rendered console section")

	return sb.String()
}

// Compile-time interface compliance check
var _ Renderer = (*renderer)(nil)
