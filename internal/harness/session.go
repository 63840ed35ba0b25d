package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/api"
	"github.com/ethpandaops/e2e-harness/internal/browser"
	"github.com/ethpandaops/e2e-harness/internal/ci"
	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/ethpandaops/e2e-harness/internal/report"
	"github.com/ethpandaops/e2e-harness/internal/retry"
	"github.com/ethpandaops/e2e-harness/internal/testdata"
	"github.com/ethpandaops/e2e-harness/internal/tracing"
	"github.com/ethpandaops/e2e-harness/internal/ui"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

var errPanic = errors.New("test panicked")

// Session is the per-test context: a logger with a transcript, fake data,
// an isolated browser context and page, a trace and a report entry.
type Session struct {
	h          *Harness
	t          TestingT
	name       string
	category   string
	settings   *config.TestSettings
	log        logrus.FieldLogger
	transcript *transcript
	generator  testdata.Generator
	startedAt  time.Time

	browser     playwright.Browser
	ownsBrowser bool
	context     playwright.BrowserContext
	page        playwright.Page
	trace       *tracing.Manager
	entry       *report.Entry

	mu           sync.Mutex
	api          *api.Helper
	steps        int
	currentStep  string
	failureStep  string
	failure      error
	failureStack string
	artifacts    []string
}

// NewSession sets up a test and registers its teardown with t.Cleanup. A
// setup failure releases whatever was acquired and is returned.
func (h *Harness) NewSession(t TestingT, opts ...SessionOption) (*Session, error) {
	t.Helper()

	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	name := t.Name()

	category := o.category
	if category == "" {
		category = Category(name)
	}

	s := &Session{
		h:          h,
		t:          t,
		name:       name,
		category:   category,
		settings:   h.settings,
		transcript: newTranscript(),
		artifacts:  make([]string, 0, 4),
	}

	s.log = sessionLogger(h.root, s.transcript).WithFields(logrus.Fields{
		"test":     name,
		"category": category,
	})
	s.generator = testdata.NewGenerator(s.log, h.settings.TestData)

	if !o.withoutBrowser {
		if err := s.openBrowser(); err != nil {
			s.closeBrowser()

			return nil, fmt.Errorf("failed to set up %s: %w", name, err)
		}
	}

	s.startedAt = h.now()
	h.metrics.InitializeTest(name)
	s.entry = h.report.CreateEntry(name, category)
	s.Info("Test initialized")

	t.Cleanup(s.teardown)

	return s, nil
}

// Run runs fn in a new session. A panic in fn is recorded as the test's
// failure, with its stack, instead of aborting the run.
func (h *Harness) Run(t TestingT, fn func(s *Session), opts ...SessionOption) {
	t.Helper()

	s, err := h.NewSession(t, opts...)
	if err != nil {
		t.Fatalf("%v", err)

		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.recordFailure(fmt.Errorf("%w: %v", errPanic, r), string(debug.Stack()))
			t.Errorf("test panicked: %v", r)
		}
	}()

	fn(s)
}

func (s *Session) openBrowser() error {
	b, owned, err := s.h.acquireBrowser()
	if err != nil {
		return err
	}

	s.browser = b
	s.ownsBrowser = owned

	bctx, err := b.NewContext(browser.ContextOptions(s.settings, s.h.videoDir()))
	if err != nil {
		return fmt.Errorf("failed to create browser context: %w", err)
	}

	s.context = bctx

	if timeout := s.settings.Browser.Timeout; timeout > 0 {
		bctx.SetDefaultTimeout(float64(timeout))
	}

	s.trace = tracing.NewManager(s.log, bctx.Tracing(), tracing.FromConfig(s.settings.Trace), s.name)
	if err := s.trace.Start(); err != nil {
		return err
	}

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}

	s.page = page

	return nil
}

// Name returns the test name.
func (s *Session) Name() string {
	return s.name
}

// Category returns the report category.
func (s *Session) Category() string {
	return s.category
}

// Logger returns the session logger. Everything logged through it ends up
// in the test's transcript.
func (s *Session) Logger() logrus.FieldLogger {
	return s.log
}

// Settings returns the run's settings. Callers must not modify them.
func (s *Session) Settings() *config.TestSettings {
	return s.settings
}

// Page returns the test's page, or nil for sessions without a browser.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Context returns the test's browser context, or nil for sessions without
// a browser.
func (s *Session) Context() playwright.BrowserContext {
	return s.context
}

// Navigate opens path relative to the environment base URL.
func (s *Session) Navigate(path string) error {
	if s.page == nil {
		return errNoBrowser
	}

	return s.Navigator().NavigateTo(path)
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	if s.page == nil {
		return ""
	}

	return s.page.URL()
}

// UI returns an element interactor for the test's page.
func (s *Session) UI() *ui.Interactor {
	return ui.NewInteractor(s.log, s.page, s.settings)
}

// Navigator returns a navigator for the test's page.
func (s *Session) Navigator() *ui.Navigator {
	return ui.NewNavigator(s.log, s.page, s.settings)
}

// Data returns the session's fake data generator.
func (s *Session) Data() testdata.Generator {
	return s.generator
}

// API returns the session's API helper, creating it on first use. Entities
// it creates are deleted during teardown.
func (s *Session) API() (*api.Helper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.api != nil {
		return s.api, nil
	}

	client, err := api.NewClientFromSettings(s.log, s.settings)
	if err != nil {
		return nil, err
	}

	s.api = api.NewHelper(s.log, client, s.generator)

	return s.api, nil
}

// Retry runs op under the configured retry settings.
func (s *Session) Retry(ctx context.Context, op func(ctx context.Context) error) error {
	return retry.Do(ctx, s.log, retry.FromConfig(s.settings.Retry), op)
}

// Step runs fn as a named step. The step shows as a group in the trace
// viewer and becomes the failure step if the test fails inside it.
func (s *Session) Step(name string, fn func()) {
	s.mu.Lock()
	s.steps++
	s.currentStep = name
	s.mu.Unlock()

	s.log.WithField("step", name).Info("Step started")

	if s.trace != nil {
		s.trace.Group(name)
		defer s.trace.GroupEnd()
	}

	completed := false

	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if (!completed || s.t.Failed()) && s.failureStep == "" {
			s.failureStep = name
		}

		s.currentStep = ""
	}()

	fn()

	completed = true
}

// Info writes msg to the test log and the report entry.
func (s *Session) Info(msg string) {
	s.log.Info(msg)
	s.entry.Info(msg)
}

// Warn writes a warning to the test log and the report entry.
func (s *Session) Warn(msg string) {
	s.log.Warn(msg)
	s.entry.Warning(msg)
}

// Error records err against the test log and the report entry without
// failing the test.
func (s *Session) Error(msg string, err error) {
	s.log.WithError(err).Error(msg)
	s.entry.Error(msg, err, "")
}

// Attach registers an extra file with the test's metrics, report entry and
// CI result.
func (s *Session) Attach(path, description string) {
	s.register(kindOf(path), path, description)
}

// Check records err as the test's failure and marks the test failed. It
// reports whether err was nil.
func (s *Session) Check(err error) bool {
	if err == nil {
		return true
	}

	s.t.Helper()
	s.recordFailure(err, string(debug.Stack()))
	s.t.Errorf("%v", err)

	return false
}

// Require is Check that stops the test.
func (s *Session) Require(err error) {
	if err == nil {
		return
	}

	s.t.Helper()
	s.recordFailure(err, string(debug.Stack()))
	s.t.Fatalf("%v", err)
}

func (s *Session) recordFailure(err error, stack string) {
	s.log.WithError(err).Error("Test failure recorded")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure == nil {
		s.failure = err
		s.failureStack = stack
	}

	if s.failureStep == "" {
		s.failureStep = s.currentStep
	}
}

// outcome maps the test's state to a verdict. A recorded failure wins over
// a skip.
func (s *Session) outcome() metrics.Outcome {
	s.mu.Lock()
	failure := s.failure
	steps := s.steps
	s.mu.Unlock()

	switch {
	case failure != nil || s.t.Failed():
		if errors.Is(failure, context.DeadlineExceeded) {
			return metrics.OutcomeTimeout
		}

		return metrics.OutcomeFailed
	case s.t.Skipped():
		if steps == 0 {
			return metrics.OutcomeNotExecuted
		}

		return metrics.OutcomeInconclusive
	default:
		return metrics.OutcomePassed
	}
}

func (s *Session) failureMessage() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure == nil {
		return "test reported a failure", ""
	}

	return s.failure.Error(), s.failureStack
}

func (s *Session) teardown() {
	ctx := context.Background()
	now := s.h.now()
	duration := now.Sub(s.startedAt)
	outcome := s.outcome()
	failed := outcome == metrics.OutcomeFailed || outcome == metrics.OutcomeTimeout

	var message, stack string
	if failed {
		message, stack = s.failureMessage()
	}

	s.mu.Lock()
	failureStep := s.failureStep
	helper := s.api
	s.mu.Unlock()

	s.h.metrics.RecordTestResult(&metrics.TestExecutionMetric{
		TestName:     s.name,
		Duration:     duration,
		Passed:       outcome == metrics.OutcomePassed,
		Outcome:      outcome,
		FailureStep:  failureStep,
		ErrorMessage: message,
		Category:     s.category,
		Timestamp:    s.startedAt,
	})

	if helper != nil {
		if n := helper.Cleanup(ctx); n > 0 {
			s.Warn(fmt.Sprintf("%d test resources could not be deleted", n))
		}
	}

	if failed && s.page != nil {
		s.captureScreenshot(now)
	}

	if s.trace != nil {
		path, err := s.trace.Stop(failed)
		if err != nil {
			s.Warn("Failed to save trace: " + err.Error())
		} else if path != "" {
			s.register(metrics.ArtifactTrace, path, "Trace")
		}
	}

	video := s.videoPath()
	s.closeContext()

	if video != "" {
		s.saveVideo(video, now)
	}

	logPath := filepath.Join(s.h.logDir(), tracing.ArtifactName(s.name, now, ".log"))
	if err := s.transcript.WriteFile(logPath); err != nil {
		s.Warn("Failed to save test log: " + err.Error())
	} else {
		s.register(metrics.ArtifactLog, logPath, "Test Log")
	}

	switch outcome {
	case metrics.OutcomePassed:
		s.entry.Pass("Test passed")
	case metrics.OutcomeNotExecuted, metrics.OutcomeInconclusive:
		s.entry.Skip("Test skipped")
	default:
		msg := "Test failed: " + message
		if failureStep != "" {
			msg += " (step: " + failureStep + ")"
		}

		s.entry.Fail(msg, stack)
	}

	s.publish(ctx, outcome, duration, message)

	if s.ownsBrowser && s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.h.addReleaseError(fmt.Errorf("%s: closing browser: %w", s.name, err))
		}

		s.browser = nil
	}

	s.log.WithFields(logrus.Fields{
		"outcome":  outcome,
		"duration": duration,
	}).Info("Test finished")
}

func (s *Session) captureScreenshot(at time.Time) {
	shots := s.settings.Browser.Screenshots
	if !shots.Enabled || !shots.TakeOnFailure {
		return
	}

	path := filepath.Join(shots.Directory, tracing.ArtifactName(s.name, at, ".png"))

	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.Warn("Failed to take screenshot: " + err.Error())

		return
	}

	s.register(metrics.ArtifactScreenshot, path, "Failure Screenshot")
}

// videoPath must be read before the page closes; the file itself is only
// complete once the context is closed.
func (s *Session) videoPath() string {
	if s.page == nil || !s.settings.Browser.RecordVideo {
		return ""
	}

	video := s.page.Video()
	if video == nil {
		return ""
	}

	path, err := video.Path()
	if err != nil {
		s.Warn("Failed to resolve video path: " + err.Error())

		return ""
	}

	return path
}

func (s *Session) saveVideo(src string, at time.Time) {
	if _, err := os.Stat(src); err != nil {
		s.Warn("Video file not found: " + src)

		return
	}

	dst := filepath.Join(s.h.videoDir(), tracing.ArtifactName(s.name, at, ".webm"))
	if err := moveFile(src, dst); err != nil {
		s.Warn("Failed to save video: " + err.Error())

		return
	}

	s.register(metrics.ArtifactVideo, dst, "Test Video")
}

// closeContext releases the page then the context. Failures are recorded on
// the harness and never change the test's verdict.
func (s *Session) closeContext() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.h.addReleaseError(fmt.Errorf("%s: closing page: %w", s.name, err))
		}

		s.page = nil
	}

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			s.h.addReleaseError(fmt.Errorf("%s: closing browser context: %w", s.name, err))
		}

		s.context = nil
	}
}

// closeBrowser undoes a partial setup.
func (s *Session) closeBrowser() {
	if s.trace != nil {
		if _, err := s.trace.Stop(false); err != nil {
			s.log.WithError(err).Debug("Failed to stop trace")
		}
	}

	s.closeContext()

	if s.ownsBrowser && s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.h.addReleaseError(fmt.Errorf("%s: closing browser: %w", s.name, err))
		}
	}

	s.browser = nil
}

// register records a persisted file with metrics, the report entry and the
// attachments sent to CI. A missing file is a warning.
func (s *Session) register(kind metrics.ArtifactKind, path, description string) {
	info, err := os.Stat(path)
	if err != nil {
		s.Warn(fmt.Sprintf("Artifact %s not found: %v", path, err))

		return
	}

	s.h.metrics.RecordArtifact(metrics.ArtifactMetric{
		TestName:  s.name,
		Kind:      kind,
		Path:      path,
		SizeBytes: info.Size(),
		Timestamp: s.h.now(),
	})

	s.entry.Attach(report.AttachmentHTML(s.h.reportDir(), path, description))

	s.mu.Lock()
	s.artifacts = append(s.artifacts, path)
	s.mu.Unlock()
}

// Artifacts returns the files registered so far.
func (s *Session) Artifacts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]string, len(s.artifacts))
	copy(result, s.artifacts)

	return result
}

func (s *Session) publish(ctx context.Context, outcome metrics.Outcome, duration time.Duration, message string) {
	if !s.h.ci.Enabled() {
		return
	}

	if err := s.h.ci.PublishResult(ctx, ci.Result{
		TestName:          s.name,
		AutomatedTestName: s.name,
		Outcome:           outcome,
		Duration:          duration,
		ErrorMessage:      message,
	}); err != nil {
		s.log.WithError(err).Warn("Failed to publish result to CI")

		return
	}

	if err := s.h.ci.AttachFiles(ctx, s.name, s.Artifacts()); err != nil {
		s.log.WithError(err).Warn("Failed to attach artifacts to CI result")
	}
}

func kindOf(path string) metrics.ArtifactKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return metrics.ArtifactScreenshot
	case ".webm", ".mp4":
		return metrics.ArtifactVideo
	case ".zip":
		return metrics.ArtifactTrace
	default:
		return metrics.ArtifactLog
	}
}

// moveFile renames src to dst, copying when they are on different devices.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src) // #nosec G304 -- path reported by the browser
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304 -- path under the report directory
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()

		return fmt.Errorf("copying %s: %w", src, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}

	return os.Remove(src)
}
