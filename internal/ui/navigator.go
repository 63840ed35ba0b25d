package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Navigator opens paths relative to Environment.BaseUrl.
type Navigator struct {
	log     logrus.FieldLogger
	page    Page
	baseURL string
	timeout time.Duration
}

// NewNavigator creates a navigator using Timeouts.Navigation.
func NewNavigator(log logrus.FieldLogger, page Page, settings *config.TestSettings) *Navigator {
	return &Navigator{
		log:     log.WithField("component", "navigation"),
		page:    page,
		baseURL: settings.Environment.BaseURL,
		timeout: config.Duration(settings.Timeouts.Navigation),
	}
}

// BuildURL joins the base URL and path with exactly one slash.
func BuildURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// BuildURL joins path onto the navigator's base URL.
func (n *Navigator) BuildURL(path string) string {
	return BuildURL(n.baseURL, path)
}

// NavigateTo loads path and waits for the load event.
func (n *Navigator) NavigateTo(path string) error {
	url := n.BuildURL(path)
	n.log.WithField("url", url).Info("navigating")

	opts := playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad}
	if n.timeout > 0 {
		opts.Timeout = playwright.Float(float64(n.timeout.Milliseconds()))
	}

	if _, err := n.page.Goto(url, opts); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}

	return nil
}

// URL returns the page's current URL.
func (n *Navigator) URL() string {
	return n.page.URL()
}
