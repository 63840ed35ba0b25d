// Package tracing captures browser traces and decides, per test outcome,
// whether the archive is kept.
package tracing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Mode selects when a trace archive is persisted.
type Mode string

const (
	// ModeAlways persists every trace.
	ModeAlways Mode = "Always"
	// ModeOnFailure persists traces of failed tests only.
	ModeOnFailure Mode = "OnFailure"
	// ModeNever never starts capture.
	ModeNever Mode = "Never"
)

var errUnknownMode = errors.New("unknown trace mode")

// ParseMode matches a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeAlways, ModeOnFailure, ModeNever} {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}

	return "", fmt.Errorf("%w: %q", errUnknownMode, s)
}

// Settings is the per-session copy of the trace configuration.
type Settings struct {
	Enabled     bool
	Directory   string
	Mode        Mode
	Screenshots bool
	Snapshots   bool
	Sources     bool
}

// FromConfig converts the configured trace section. Unknown modes fall back
// to OnFailure; config validation rejects them earlier.
func FromConfig(cfg config.TraceSettings) Settings {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		mode = ModeOnFailure
	}

	return Settings{
		Enabled:     cfg.Enabled,
		Directory:   cfg.Directory,
		Mode:        mode,
		Screenshots: cfg.Screenshots,
		Snapshots:   cfg.Snapshots,
		Sources:     cfg.Sources,
	}
}

// Manager owns trace capture for one test.
type Manager struct {
	log      logrus.FieldLogger
	tracing  playwright.Tracing
	settings Settings
	testName string
	now      func() time.Time
	started  bool
}

// NewManager creates a trace manager for a test's browser context.
func NewManager(log logrus.FieldLogger, tracing playwright.Tracing, settings Settings, testName string) *Manager {
	return &Manager{
		log:      log.WithField("component", "trace_manager"),
		tracing:  tracing,
		settings: settings,
		testName: testName,
		now:      time.Now,
	}
}

// Active reports whether capture is running.
func (m *Manager) Active() bool {
	return m.started
}

// Start begins capture unless tracing is disabled or the mode is Never.
func (m *Manager) Start() error {
	if !m.settings.Enabled || m.settings.Mode == ModeNever {
		return nil
	}

	err := m.tracing.Start(playwright.TracingStartOptions{
		Name:        playwright.String(m.testName),
		Screenshots: playwright.Bool(m.settings.Screenshots),
		Snapshots:   playwright.Bool(m.settings.Snapshots),
		Sources:     playwright.Bool(m.settings.Sources),
	})
	if err != nil {
		return fmt.Errorf("starting trace: %w", err)
	}

	m.started = true
	m.log.WithField("mode", m.settings.Mode).Debug("trace capture started")

	return nil
}

// Stop ends capture and returns the archive path, or "" when nothing was
// persisted under the configured mode.
func (m *Manager) Stop(testFailed bool) (string, error) {
	if !m.started {
		return "", nil
	}

	m.started = false

	if m.settings.Mode == ModeOnFailure && !testFailed {
		// Stopping without a path discards the recording.
		if err := m.tracing.Stop(); err != nil {
			return "", fmt.Errorf("discarding trace: %w", err)
		}

		return "", nil
	}

	if err := os.MkdirAll(m.settings.Directory, 0o750); err != nil {
		return "", fmt.Errorf("creating trace directory: %w", err)
	}

	path := filepath.Join(m.settings.Directory, ArtifactName(m.testName, m.now(), ".zip"))

	if err := m.tracing.Stop(path); err != nil {
		return "", fmt.Errorf("saving trace: %w", err)
	}

	m.log.WithField("path", path).Info("trace saved")

	return path, nil
}

// Group opens a named group in the trace viewer while capture is running.
func (m *Manager) Group(name string) {
	if !m.started {
		return
	}

	if err := m.tracing.Group(name); err != nil {
		m.log.WithError(err).Debug("failed to open trace group")
	}
}

// GroupEnd closes the group opened by Group.
func (m *Manager) GroupEnd() {
	if !m.started {
		return
	}

	if err := m.tracing.GroupEnd(); err != nil {
		m.log.WithError(err).Debug("failed to close trace group")
	}
}

// ArtifactName builds "{name}_{yyyyMMdd_HHmmss}{ext}" with the test name made
// safe for a file system path.
func ArtifactName(testName string, at time.Time, ext string) string {
	return SanitizeName(testName) + "_" + at.Format(config.ArtifactTimestampLayout) + ext
}

// SanitizeName replaces characters that cannot appear in a file name.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}

		return r
	}, name)
}
