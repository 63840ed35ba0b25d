// Package harness runs browser end-to-end tests: it owns the run-scoped
// browser, metrics, report and CI publishing, and gives each test a Session
// whose teardown captures and registers its artifacts.
package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/browser"
	"github.com/ethpandaops/e2e-harness/internal/ci"
	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/ethpandaops/e2e-harness/internal/report"
	"github.com/ethpandaops/e2e-harness/internal/report/console"
	"github.com/ethpandaops/e2e-harness/internal/report/history"
	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

var (
	errNotStarted = errors.New("harness not started")
	errNoBrowser  = errors.New("session has no browser")
)

// Config contains the collaborators of a harness. Nil fields are built from
// Settings.
type Config struct {
	Logger   logrus.FieldLogger
	Settings *config.TestSettings
	Engine   browser.Engine
	Metrics  metrics.Collector
	Report   *report.Report
	CI       ci.Reporter
	History  history.Sink
	Writer   io.Writer
	Now      func() time.Time
}

// Harness is the state of one test run.
type Harness struct {
	log      logrus.FieldLogger
	root     *logrus.Logger
	settings *config.TestSettings
	engine   browser.Engine
	metrics  metrics.Collector
	report   *report.Report
	ci       ci.Reporter
	history  history.Sink
	writer   io.Writer
	now      func() time.Time
	runID    string

	mu      sync.Mutex
	started bool

	browserMu sync.Mutex
	shared    playwright.Browser

	errMu       sync.Mutex
	releaseErrs []error
}

// New creates a harness. When cfg.Settings is nil the layered configuration
// is loaded from the working directory.
func New(cfg *Config) (*Harness, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	settings := cfg.Settings
	if settings == nil {
		loaded, err := config.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}

		settings = loaded
	}

	h := &Harness{
		log:      log.WithField("component", "harness"),
		root:     rootLogger(log),
		settings: settings,
		engine:   cfg.Engine,
		metrics:  cfg.Metrics,
		report:   cfg.Report,
		ci:       cfg.CI,
		history:  cfg.History,
		writer:   cfg.Writer,
		now:      cfg.Now,
		runID:    uuid.NewString(),
	}

	if h.engine == nil {
		h.engine = browser.NewEngine(log, settings.Browser)
	}

	if h.metrics == nil {
		h.metrics = metrics.NewCollector(log)
	}

	if h.report == nil {
		h.report = report.New(log, report.OptionsFromConfig(settings.Reporting.HTML))
	}

	if h.ci == nil {
		h.ci = ci.NewReporter(log, settings.Reporting.AzureDevOps)
	}

	if h.writer == nil {
		h.writer = os.Stdout
	}

	if h.now == nil {
		h.now = time.Now
	}

	return h, nil
}

// RunID identifies this run in the CI run name, metrics.json and history.
func (h *Harness) RunID() string {
	return h.runID
}

// Settings returns the run's settings. Callers must not modify them.
func (h *Harness) Settings() *config.TestSettings {
	return h.settings
}

// Metrics returns the run's metrics collector.
func (h *Harness) Metrics() metrics.Collector {
	return h.metrics
}

// Report returns the run's HTML report.
func (h *Harness) Report() *report.Report {
	return h.report
}

// Start prepares the artifact directories and opens every report sink.
func (h *Harness) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, dir := range h.directories() {
		if dir == "" {
			continue
		}

		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := h.report.Init(); err != nil {
		return fmt.Errorf("failed to initialize report: %w", err)
	}

	if err := h.metrics.Start(ctx); err != nil {
		return fmt.Errorf("failed to start metrics collector: %w", err)
	}

	h.addSystemInfo()

	runName := h.settings.Reporting.HTML.ReportName + " " + h.runID
	if err := h.ci.StartRun(ctx, runName); err != nil {
		h.log.WithError(err).Warn("Failed to start CI test run, results will not be published")
	}

	if h.history == nil {
		sink, err := history.NewSink(ctx, h.log, h.settings.Reporting.History)
		if err != nil {
			h.log.WithError(err).Warn("Failed to connect to results history, export disabled")

			sink = history.Discard()
		}

		h.history = sink
	}

	h.started = true

	h.log.WithFields(logrus.Fields{
		"run_id":      h.runID,
		"environment": h.settings.Environment.Name,
		"base_url":    h.settings.Environment.BaseURL,
	}).Info("Test run started")

	return nil
}

// Stop releases the shared browser and the engine, then flushes every
// report sink. The returned error joins the resource-release failures of
// the whole run with any failure to write the run's reports.
func (h *Harness) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return errNotStarted
	}

	h.started = false

	h.browserMu.Lock()
	shared := h.shared
	h.shared = nil
	h.browserMu.Unlock()

	if shared != nil {
		if err := shared.Close(); err != nil {
			h.addReleaseError(fmt.Errorf("closing shared browser: %w", err))
		}
	}

	if err := h.engine.Stop(); err != nil {
		h.addReleaseError(fmt.Errorf("stopping browser engine: %w", err))
	}

	var errs []error

	h.report.AddRunnerLog(h.metrics.GenerateReport())

	if err := h.report.Flush(); err != nil && !report.IsDisabled(err) {
		errs = append(errs, fmt.Errorf("failed to write report: %w", err))
	}

	snapshot := console.SnapshotOf(h.runID, h.metrics)

	if err := h.writeSnapshot(snapshot); err != nil {
		errs = append(errs, err)
	}

	if h.settings.Reporting.HTML.ConsoleSummary {
		console.NewPrinter(h.log, h.writer).Print(snapshot)
	}

	if h.history != nil {
		if err := h.history.Write(ctx, h.runID, snapshot.Tests, snapshot.Artifacts); err != nil {
			h.log.WithError(err).Warn("Failed to export results history")
		}

		if err := h.history.Close(); err != nil {
			h.log.WithError(err).Debug("Failed to close results history")
		}
	}

	if err := h.ci.CompleteRun(ctx); err != nil {
		h.log.WithError(err).Warn("Failed to complete CI test run")
	}

	if err := h.metrics.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop metrics collector: %w", err))
	}

	h.log.WithFields(logrus.Fields{
		"run_id": h.runID,
		"report": h.report.Path(),
	}).Info("Test run finished")

	return errors.Join(append(h.ReleaseErrors(), errs...)...)
}

// ReleaseErrors returns every failure to release a browser resource so far.
func (h *Harness) ReleaseErrors() []error {
	h.errMu.Lock()
	defer h.errMu.Unlock()

	result := make([]error, len(h.releaseErrs))
	copy(result, h.releaseErrs)

	return result
}

func (h *Harness) addReleaseError(err error) {
	h.log.WithError(err).Warn("Failed to release browser resource")

	h.errMu.Lock()
	defer h.errMu.Unlock()
	h.releaseErrs = append(h.releaseErrs, err)
}

// acquireBrowser returns the shared browser, launching it on first use or
// after a disconnect, or a browser owned by the caller when reuse is off.
func (h *Harness) acquireBrowser() (playwright.Browser, bool, error) {
	if !h.settings.Browser.ReuseBrowser {
		b, err := h.engine.Launch()
		if err != nil {
			return nil, false, fmt.Errorf("failed to launch browser: %w", err)
		}

		return b, true, nil
	}

	h.browserMu.Lock()
	defer h.browserMu.Unlock()

	if h.shared != nil && h.shared.IsConnected() {
		return h.shared, false, nil
	}

	b, err := h.engine.Launch()
	if err != nil {
		return nil, false, fmt.Errorf("failed to launch browser: %w", err)
	}

	h.shared = b

	return b, false, nil
}

func (h *Harness) reportDir() string {
	return h.settings.Reporting.HTML.OutputDirectory
}

func (h *Harness) videoDir() string {
	return filepath.Join(h.reportDir(), config.VideosDirName)
}

func (h *Harness) logDir() string {
	return filepath.Join(h.reportDir(), config.LogsDirName)
}

func (h *Harness) directories() []string {
	return []string{
		h.reportDir(),
		h.videoDir(),
		filepath.Join(h.reportDir(), config.TracesDirName),
		h.logDir(),
		h.settings.Browser.Screenshots.Directory,
		h.settings.Trace.Directory,
	}
}

func (h *Harness) addSystemInfo() {
	s := h.settings
	for _, kv := range [][2]string{
		{"Environment", s.Environment.Name},
		{"Base URL", s.Environment.BaseURL},
		{"Browser", s.Browser.Type},
		{"Headless", strconv.FormatBool(s.Browser.Headless)},
		{"Viewport", fmt.Sprintf("%dx%d", s.Browser.Viewport.Width, s.Browser.Viewport.Height)},
		{"Trace Mode", s.Trace.Mode},
		{"Run ID", h.runID},
		{"Go Version", runtime.Version()},
		{"OS", runtime.GOOS + "/" + runtime.GOARCH},
	} {
		h.report.AddSystemInfo(kv[0], kv[1])
	}
}

// writeSnapshot persists the run summary as metrics.json next to the report.
func (h *Harness) writeSnapshot(snapshot *console.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	if err := os.MkdirAll(h.reportDir(), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(h.reportDir(), config.MetricsFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	return nil
}
