// Package report writes the HTML run report: one entry per test, its log
// lines and its attachment cards.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/sirupsen/logrus"
)

var errReportDisabled = errors.New("html report disabled")

// Options configures a report.
type Options struct {
	Enabled       bool
	Directory     string
	DocumentTitle string
	ReportName    string
	Theme         string
}

// OptionsFromConfig converts the configured HTML report section.
func OptionsFromConfig(cfg config.HTMLReportSettings) Options {
	return Options{
		Enabled:       cfg.Enabled,
		Directory:     cfg.OutputDirectory,
		DocumentTitle: cfg.DocumentTitle,
		ReportName:    cfg.ReportName,
		Theme:         cfg.Theme,
	}
}

type systemInfo struct {
	Key   string
	Value string
}

// Report collects entries for a run and renders them to index.html.
type Report struct {
	log        logrus.FieldLogger
	opts       Options
	mu         sync.Mutex
	systemInfo []systemInfo
	entries    []*Entry
	runnerLogs []template.HTML
	startedAt  time.Time
	now        func() time.Time
}

// New creates a report. Nothing is written until Init and Flush.
func New(log logrus.FieldLogger, opts Options) *Report {
	return &Report{
		log:       log.WithField("component", "html_report"),
		opts:      opts,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Directory returns the report root; attachment paths are relative to it.
func (r *Report) Directory() string {
	return r.opts.Directory
}

// Init creates the report directory and its attachment folders.
func (r *Report) Init() error {
	if !r.opts.Enabled {
		return nil
	}

	for _, dir := range []string{
		r.opts.Directory,
		filepath.Join(r.opts.Directory, config.VideosDirName),
		filepath.Join(r.opts.Directory, config.TracesDirName),
		filepath.Join(r.opts.Directory, config.LogsDirName),
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating report directory %s: %w", dir, err)
		}
	}

	r.log.WithField("dir", r.opts.Directory).Debug("report directories created")

	return nil
}

// AddSystemInfo adds a key/value row to the environment section.
func (r *Report) AddSystemInfo(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systemInfo = append(r.systemInfo, systemInfo{Key: key, Value: value})
}

// CreateEntry starts the section for one test.
func (r *Report) CreateEntry(name, category string) *Entry {
	e := newEntry(name, category, r.now)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)

	return e
}

// AddRunnerLog appends a run-level HTML fragment, e.g. the metrics analysis.
func (r *Report) AddRunnerLog(fragment template.HTML) {
	if fragment == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runnerLogs = append(r.runnerLogs, fragment)
}

// Path returns where Flush writes the report.
func (r *Report) Path() string {
	return filepath.Join(r.opts.Directory, config.ReportFile)
}

// Flush renders every entry to index.html, replacing any earlier render.
func (r *Report) Flush() error {
	if !r.opts.Enabled {
		return errReportDisabled
	}

	r.mu.Lock()
	data := pageData{
		Title:      r.opts.DocumentTitle,
		ReportName: r.opts.ReportName,
		Theme:      r.opts.Theme,
		Started:    r.startedAt,
		Generated:  r.now(),
		SystemInfo: append([]systemInfo(nil), r.systemInfo...),
		RunnerLogs: append([]template.HTML(nil), r.runnerLogs...),
		Entries:    make([]entryView, 0, len(r.entries)),
		Counts:     map[string]int{},
	}

	for _, e := range r.entries {
		v := e.view()
		data.Entries = append(data.Entries, v)
		data.Counts[string(v.Status)]++
	}
	r.mu.Unlock()

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if err := os.MkdirAll(r.opts.Directory, 0o750); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	if err := os.WriteFile(r.Path(), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	r.log.WithField("path", r.Path()).Info("report written")

	return nil
}

// IsDisabled reports whether err came from flushing a disabled report.
func IsDisabled(err error) bool {
	return errors.Is(err, errReportDisabled)
}
