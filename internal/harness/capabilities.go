package harness

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// TestingT is the subset of *testing.T a session reports through.
type TestingT interface {
	Name() string
	Helper()
	Cleanup(fn func())
	Failed() bool
	Skipped() bool
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// Navigable is a test that drives a browser page.
type Navigable interface {
	Page() playwright.Page
	Navigate(path string) error
	URL() string
}

// Reportable is a test that writes to its report entry.
type Reportable interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	Attach(path, description string)
}

// Traceable is a test that groups its actions into named steps.
type Traceable interface {
	Step(name string, fn func())
}

// Compile-time interface compliance check
var (
	_ Navigable  = (*Session)(nil)
	_ Reportable = (*Session)(nil)
	_ Traceable  = (*Session)(nil)
)

// Report categories.
const (
	CategoryAPI        = "API Tests"
	CategoryNavigation = "Navigation Tests"
	CategorySearch     = "Search Tests"
	CategoryUI         = "UI Tests"
)

// Category derives a report category from a test name.
func Category(testName string) string {
	switch {
	case strings.Contains(testName, "API"):
		return CategoryAPI
	case strings.Contains(testName, "Navigation"):
		return CategoryNavigation
	case strings.Contains(testName, "Search"):
		return CategorySearch
	default:
		return CategoryUI
	}
}
