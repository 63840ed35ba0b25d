package console

import (
	"fmt"

	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/fatih/color"
)

// role is what a piece of console text means, and so how it is painted.
type role int

const (
	roleSuccess role = iota
	roleFailure
	roleWarning
	roleInfo
	roleMuted
	roleBold
	roleHeader
)

var palette = map[role]*color.Color{
	roleSuccess: color.New(color.FgGreen),
	roleFailure: color.New(color.FgRed),
	roleWarning: color.New(color.FgYellow),
	roleInfo:    color.New(color.FgCyan),
	roleMuted:   color.New(color.FgHiBlack),
	roleBold:    color.New(color.Bold),
	roleHeader:  color.New(color.FgCyan, color.Bold),
}

type outcomeLabel struct {
	text string
	role role
}

var outcomeLabels = map[metrics.Outcome]outcomeLabel{
	metrics.OutcomePassed:       {text: "✓ PASS", role: roleSuccess},
	metrics.OutcomeFailed:       {text: "✗ FAIL", role: roleFailure},
	metrics.OutcomeTimeout:      {text: "⏱ TIMEOUT", role: roleFailure},
	metrics.OutcomeInconclusive: {text: "? INCONCLUSIVE", role: roleWarning},
	metrics.OutcomeNotExecuted:  {text: "- SKIP", role: roleMuted},
}

// ColorHelper paints console text by role. Colors are enabled only when
// writing to a terminal.
type ColorHelper struct {
	enabled bool
}

// NewColorHelper creates a new color helper
func NewColorHelper() *ColorHelper {
	return &ColorHelper{
		enabled: !color.NoColor,
	}
}

func (c *ColorHelper) paint(r role, text string) string {
	if !c.enabled {
		return text
	}

	return palette[r].Sprint(text)
}

func (c *ColorHelper) Success(text string) string { return c.paint(roleSuccess, text) }

func (c *ColorHelper) Failure(text string) string { return c.paint(roleFailure, text) }

func (c *ColorHelper) Warning(text string) string { return c.paint(roleWarning, text) }

func (c *ColorHelper) Info(text string) string { return c.paint(roleInfo, text) }

func (c *ColorHelper) Muted(text string) string { return c.paint(roleMuted, text) }

func (c *ColorHelper) Bold(text string) string { return c.paint(roleBold, text) }

// Header paints a section title.
func (c *ColorHelper) Header(text string) string { return c.paint(roleHeader, text) }

// FormatOutcome labels an outcome. Unknown outcomes show as skipped.
func (c *ColorHelper) FormatOutcome(outcome metrics.Outcome) string {
	label, ok := outcomeLabels[outcome]
	if !ok {
		label = outcomeLabels[metrics.OutcomeNotExecuted]
	}

	return c.paint(label.role, label.text)
}

// FormatPercentage paints a pass rate: green only at 100%, yellow from 90%.
func (c *ColorHelper) FormatPercentage(value float64) string {
	text := fmt.Sprintf("%.1f%%", value)

	switch {
	case value >= 100:
		return c.Success(text)
	case value >= 90:
		return c.Warning(text)
	default:
		return c.Failure(text)
	}
}
