// Package browser starts the browser automation driver and launches browsers
// configured by the harness settings.
package browser

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

var (
	errUnknownBrowser = errors.New("unknown browser type")
	errEngineStopped  = errors.New("browser engine stopped")
)

// Engine launches browsers. Stop releases the driver and must be called after
// every launched browser is closed.
type Engine interface {
	Launch() (playwright.Browser, error)
	Stop() error
}

// engine implements Engine on a lazily started playwright driver.
type engine struct {
	log      logrus.FieldLogger
	settings config.BrowserSettings

	mu      sync.Mutex
	pw      *playwright.Playwright
	stopped bool
}

// NewEngine creates an engine for settings. The driver starts on the first
// Launch.
func NewEngine(log logrus.FieldLogger, settings config.BrowserSettings) Engine {
	return &engine{
		log:      log.WithField("component", "browser_engine"),
		settings: settings,
	}
}

func (e *engine) Launch() (playwright.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil, errEngineStopped
	}

	if e.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start playwright: %w", err)
		}

		e.pw = pw
	}

	browserType, err := selectType(e.pw, e.settings.Type)
	if err != nil {
		return nil, err
	}

	browser, err := browserType.Launch(LaunchOptions(e.settings))
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", e.settings.Type, err)
	}

	e.log.WithFields(logrus.Fields{
		"type":     e.settings.Type,
		"headless": e.settings.Headless,
		"version":  browser.Version(),
	}).Debug("launched browser")

	return browser, nil
}

func (e *engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = true

	if e.pw == nil {
		return nil
	}

	pw := e.pw
	e.pw = nil

	if err := pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}

	e.log.Debug("stopped playwright driver")

	return nil
}

func selectType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch strings.ToLower(name) {
	case "", "chromium", "chrome":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBrowser, name)
	}
}

// LaunchOptions maps browser settings to launch options.
func LaunchOptions(settings config.BrowserSettings) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(settings.Headless),
		Args:     settings.LaunchArgs,
	}

	if settings.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(settings.SlowMo))
	}

	if settings.Timeout > 0 {
		opts.Timeout = playwright.Float(float64(settings.Timeout))
	}

	return opts
}

// ContextOptions builds isolated context options with the configured
// viewport. Video is recorded into videoDir when enabled and videoDir is set.
func ContextOptions(settings *config.TestSettings, videoDir string) playwright.BrowserNewContextOptions {
	viewport := &playwright.Size{
		Width:  settings.Browser.Viewport.Width,
		Height: settings.Browser.Viewport.Height,
	}

	opts := playwright.BrowserNewContextOptions{
		Viewport: viewport,
	}

	if settings.Environment.BaseURL != "" {
		opts.BaseURL = playwright.String(settings.Environment.BaseURL)
	}

	if settings.Browser.RecordVideo && videoDir != "" {
		opts.RecordVideo = &playwright.RecordVideo{
			Dir:  videoDir,
			Size: viewport,
		}
	}

	return opts
}

// Install downloads the driver and the named browsers. No names installs the
// configured default set.
func Install(log logrus.FieldLogger, browsers ...string) error {
	log.WithField("browsers", browsers).Info("installing playwright driver and browsers")

	if err := playwright.Install(&playwright.RunOptions{Browsers: browsers}); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	return nil
}

// Compile-time interface compliance check
var _ Engine = (*engine)(nil)
