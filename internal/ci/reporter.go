// Package ci publishes test runs, results and attachments to a CI
// test-management service.
package ci

import (
	"context"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Result is one test verdict to publish.
type Result struct {
	TestName          string
	AutomatedTestName string
	Outcome           metrics.Outcome
	Duration          time.Duration
	ErrorMessage      string
}

// Reporter publishes a single test run. Calls made before StartRun succeeded
// are no-ops.
type Reporter interface {
	StartRun(ctx context.Context, name string) error
	PublishResult(ctx context.Context, result Result) error
	AttachFile(ctx context.Context, testName, path string) error
	AttachFiles(ctx context.Context, testName string, paths []string) error
	CompleteRun(ctx context.Context) error
	RunID() string
	Enabled() bool
}

// NewReporter returns an Azure DevOps reporter, or a no-op one when the
// integration is disabled.
func NewReporter(log logrus.FieldLogger, settings config.AzureDevOpsSettings) Reporter {
	if !settings.Enabled {
		return Noop{}
	}

	return NewAzureDevOps(log, settings, nil)
}

// Noop discards everything.
type Noop struct{}

func (Noop) StartRun(context.Context, string) error { return nil }
func (Noop) PublishResult(context.Context, Result) error { return nil }
func (Noop) AttachFile(context.Context, string, string) error { return nil }
func (Noop) AttachFiles(context.Context, string, []string) error { return nil }
func (Noop) CompleteRun(context.Context) error { return nil }
func (Noop) RunID() string { return "" }
func (Noop) Enabled() bool { return false }

// Compile-time interface compliance check
var _ Reporter = Noop{}
