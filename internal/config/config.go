// Package config handles layered harness settings: a base appsettings file, an
// environment overlay and environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	errBaseURLRequired    = errors.New("missing Environment.BaseUrl")
	errInvalidBaseURL     = errors.New("invalid Environment.BaseUrl, expected an absolute URL")
	errInvalidBrowserType = errors.New("invalid Browser.Type, expected chromium, firefox or webkit")
	errInvalidViewport    = errors.New("invalid Browser.Viewport, width and height must be positive")
	errInvalidTraceMode   = errors.New("invalid Trace.Mode, expected Always, OnFailure or Never")
	errInvalidRetry       = errors.New("invalid Retry.MaxAttempts, must be at least 1")
	errCIMissingFields    = errors.New("incomplete Reporting.AzureDevOps, OrganizationUrl, ProjectName and PersonalAccessToken are required when enabled")
)

// TestSettings is the typed view of the merged configuration.
type TestSettings struct {
	Environment EnvironmentSettings `json:"Environment" yaml:"Environment"`
	TestData    TestDataSettings    `json:"TestData" yaml:"TestData"`
	Browser     BrowserSettings     `json:"Browser" yaml:"Browser"`
	Timeouts    TimeoutSettings     `json:"Timeouts" yaml:"Timeouts"`
	Trace       TraceSettings       `json:"Trace" yaml:"Trace"`
	Retry       RetrySettings       `json:"Retry" yaml:"Retry"`
	Reporting   ReportingSettings   `json:"Reporting" yaml:"Reporting"`

	// Sources lists the files that contributed, in the order they were applied.
	Sources []string `json:"-" yaml:"-"`
}

// EnvironmentSettings describes the system under test.
type EnvironmentSettings struct {
	Name       string            `json:"Name" yaml:"Name"`
	BaseURL    string            `json:"BaseUrl" yaml:"BaseUrl"`
	APIBaseURL string            `json:"ApiBaseUrl" yaml:"ApiBaseUrl"`
	Variables  map[string]string `json:"Variables" yaml:"Variables"`
}

// TestDataSettings configures fake data generation and fixture lookup.
type TestDataSettings struct {
	Locale        string `json:"Locale" yaml:"Locale"`
	DataDirectory string `json:"DataDirectory" yaml:"DataDirectory"`
	// Seed makes generated data reproducible. Zero picks a random seed.
	Seed uint64 `json:"Seed" yaml:"Seed"`
}

// BrowserSettings configures the browser engine and each test's context.
type BrowserSettings struct {
	Type         string             `json:"Type" yaml:"Type"`
	Headless     bool               `json:"Headless" yaml:"Headless"`
	SlowMo       int                `json:"SlowMo" yaml:"SlowMo"`
	Timeout      int                `json:"Timeout" yaml:"Timeout"`
	Viewport     ViewportSettings   `json:"Viewport" yaml:"Viewport"`
	LaunchArgs   []string           `json:"LaunchArgs" yaml:"LaunchArgs"`
	RecordVideo  bool               `json:"RecordVideo" yaml:"RecordVideo"`
	ReuseBrowser bool               `json:"ReuseBrowser" yaml:"ReuseBrowser"`
	Screenshots  ScreenshotSettings `json:"Screenshots" yaml:"Screenshots"`
}

// ViewportSettings is the page size in CSS pixels.
type ViewportSettings struct {
	Width  int `json:"Width" yaml:"Width"`
	Height int `json:"Height" yaml:"Height"`
}

// ScreenshotSettings controls failure screenshots.
type ScreenshotSettings struct {
	Enabled       bool   `json:"Enabled" yaml:"Enabled"`
	TakeOnFailure bool   `json:"TakeOnFailure" yaml:"TakeOnFailure"`
	Directory     string `json:"Directory" yaml:"Directory"`
}

// TimeoutSettings holds per-operation timeouts in milliseconds.
type TimeoutSettings struct {
	PageLoad   int `json:"PageLoad" yaml:"PageLoad"`
	Navigation int `json:"Navigation" yaml:"Navigation"`
	Element    int `json:"Element" yaml:"Element"`
	Script     int `json:"Script" yaml:"Script"`
}

// TraceSettings controls trace capture.
type TraceSettings struct {
	Enabled     bool   `json:"Enabled" yaml:"Enabled"`
	Directory   string `json:"Directory" yaml:"Directory"`
	Mode        string `json:"Mode" yaml:"Mode"`
	Screenshots bool   `json:"Screenshots" yaml:"Screenshots"`
	Snapshots   bool   `json:"Snapshots" yaml:"Snapshots"`
	Sources     bool   `json:"Sources" yaml:"Sources"`
}

// RetrySettings configures fixed-interval retries.
type RetrySettings struct {
	MaxAttempts     int `json:"MaxAttempts" yaml:"MaxAttempts"`
	IntervalSeconds int `json:"RetryIntervalSeconds" yaml:"RetryIntervalSeconds"`
}

// ReportingSettings groups every report sink.
type ReportingSettings struct {
	HTML        HTMLReportSettings  `json:"Html" yaml:"Html"`
	AzureDevOps AzureDevOpsSettings `json:"AzureDevOps" yaml:"AzureDevOps"`
	History     HistorySettings     `json:"History" yaml:"History"`
}

// HTMLReportSettings configures the HTML report and console summary.
type HTMLReportSettings struct {
	Enabled         bool   `json:"Enabled" yaml:"Enabled"`
	OutputDirectory string `json:"OutputDirectory" yaml:"OutputDirectory"`
	DocumentTitle   string `json:"DocumentTitle" yaml:"DocumentTitle"`
	ReportName      string `json:"ReportName" yaml:"ReportName"`
	Theme           string `json:"Theme" yaml:"Theme"`
	ConsoleSummary  bool   `json:"ConsoleSummary" yaml:"ConsoleSummary"`
}

// AzureDevOpsSettings configures the CI test-management integration.
type AzureDevOpsSettings struct {
	Enabled             bool   `json:"Enabled" yaml:"Enabled"`
	OrganizationURL     string `json:"OrganizationUrl" yaml:"OrganizationUrl"`
	ProjectName         string `json:"ProjectName" yaml:"ProjectName"`
	PersonalAccessToken string `json:"PersonalAccessToken" yaml:"PersonalAccessToken"`
	TestPlanID          int    `json:"TestPlanId" yaml:"TestPlanId"`
	TestSuiteID         int    `json:"TestSuiteId" yaml:"TestSuiteId"`
}

// HistorySettings configures the optional ClickHouse results history.
type HistorySettings struct {
	Enabled  bool   `json:"Enabled" yaml:"Enabled"`
	Addr     string `json:"Addr" yaml:"Addr"`
	Database string `json:"Database" yaml:"Database"`
	Username string `json:"Username" yaml:"Username"`
	Password string `json:"Password" yaml:"Password"`
}

// Defaults returns the settings used when no file overrides a value.
func Defaults() *TestSettings {
	return &TestSettings{
		Environment: EnvironmentSettings{
			Name:       DefaultEnvironment,
			BaseURL:    "http://localhost:5000",
			APIBaseURL: "http://localhost:5000/api",
			Variables:  map[string]string{},
		},
		TestData: TestDataSettings{
			Locale:        "en",
			DataDirectory: "TestData",
		},
		Browser: BrowserSettings{
			Type:         "chromium",
			Headless:     true,
			Timeout:      30000,
			Viewport:     ViewportSettings{Width: 1920, Height: 1080},
			RecordVideo:  true,
			ReuseBrowser: true,
			Screenshots: ScreenshotSettings{
				Enabled:       true,
				TakeOnFailure: true,
				Directory:     ScreenshotsDir,
			},
		},
		Timeouts: TimeoutSettings{
			PageLoad:   30000,
			Navigation: 30000,
			Element:    10000,
			Script:     10000,
		},
		Trace: TraceSettings{
			Enabled:     true,
			Directory:   TracesDir,
			Mode:        "OnFailure",
			Screenshots: true,
			Snapshots:   true,
			Sources:     true,
		},
		Retry: RetrySettings{
			MaxAttempts:     3,
			IntervalSeconds: 1,
		},
		Reporting: ReportingSettings{
			HTML: HTMLReportSettings{
				Enabled:         true,
				OutputDirectory: ReportsDir,
				DocumentTitle:   "Test Execution Report",
				ReportName:      "UI Test Automation Report",
				Theme:           "Standard",
				ConsoleSummary:  true,
			},
			History: HistorySettings{
				Addr:     "localhost:9000",
				Database: "e2e",
				Username: "default",
			},
		},
	}
}

// Validate checks the merged settings for values the harness cannot run with.
func (s *TestSettings) Validate() error {
	var errs []error

	if s.Environment.BaseURL == "" {
		errs = append(errs, errBaseURLRequired)
	} else if u, err := url.Parse(s.Environment.BaseURL); err != nil || !u.IsAbs() {
		errs = append(errs, fmt.Errorf("%w: %q", errInvalidBaseURL, s.Environment.BaseURL))
	}

	switch strings.ToLower(s.Browser.Type) {
	case "chromium", "firefox", "webkit":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", errInvalidBrowserType, s.Browser.Type))
	}

	if s.Browser.Viewport.Width <= 0 || s.Browser.Viewport.Height <= 0 {
		errs = append(errs, errInvalidViewport)
	}

	switch strings.ToLower(s.Trace.Mode) {
	case "always", "onfailure", "never":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", errInvalidTraceMode, s.Trace.Mode))
	}

	if s.Retry.MaxAttempts < 1 {
		errs = append(errs, errInvalidRetry)
	}

	ado := s.Reporting.AzureDevOps
	if ado.Enabled && (ado.OrganizationURL == "" || ado.ProjectName == "" || ado.PersonalAccessToken == "") {
		errs = append(errs, errCIMissingFields)
	}

	return errors.Join(errs...)
}

// Duration converts a millisecond setting to a time.Duration.
func Duration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// RetryInterval returns the fixed wait between retry attempts.
func (r RetrySettings) RetryInterval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

func (s *TestSettings) String() string {
	patDisplay := "(not set)"
	if s.Reporting.AzureDevOps.PersonalAccessToken != "" {
		patDisplay = "********"
	}

	passwordDisplay := "(not set)"
	if s.Reporting.History.Password != "" {
		passwordDisplay = "********"
	}

	sources := "(defaults only)"
	if len(s.Sources) > 0 {
		sources = strings.Join(s.Sources, ", ")
	}

	return fmt.Sprintf(`Current Configuration:
======================
Environment:              %s
Sources:                  %s
Base URL:                 %s
API Base URL:             %s
Variables:                %d
Test Data Locale:         %s
Test Data Directory:      %s
Browser:                  %s (headless=%t, slowmo=%dms, timeout=%dms)
Viewport:                 %dx%d
Record Video:             %t
Reuse Browser:            %t
Screenshots On Failure:   %t (%s)
Timeouts (ms):            page=%d navigation=%d element=%d script=%d
Trace:                    enabled=%t mode=%s dir=%s
Retry:                    %d attempts, %ds interval
HTML Report:              enabled=%t dir=%s
Azure DevOps:             enabled=%t org=%s project=%s token=%s
History:                  enabled=%t addr=%s db=%s password=%s`,
		s.Environment.Name,
		sources,
		s.Environment.BaseURL,
		s.Environment.APIBaseURL,
		len(s.Environment.Variables),
		s.TestData.Locale,
		s.TestData.DataDirectory,
		s.Browser.Type, s.Browser.Headless, s.Browser.SlowMo, s.Browser.Timeout,
		s.Browser.Viewport.Width, s.Browser.Viewport.Height,
		s.Browser.RecordVideo,
		s.Browser.ReuseBrowser,
		s.Browser.Screenshots.Enabled && s.Browser.Screenshots.TakeOnFailure, s.Browser.Screenshots.Directory,
		s.Timeouts.PageLoad, s.Timeouts.Navigation, s.Timeouts.Element, s.Timeouts.Script,
		s.Trace.Enabled, s.Trace.Mode, s.Trace.Directory,
		s.Retry.MaxAttempts, s.Retry.IntervalSeconds,
		s.Reporting.HTML.Enabled, s.Reporting.HTML.OutputDirectory,
		s.Reporting.AzureDevOps.Enabled, s.Reporting.AzureDevOps.OrganizationURL, s.Reporting.AzureDevOps.ProjectName, patDisplay,
		s.Reporting.History.Enabled, s.Reporting.History.Addr, s.Reporting.History.Database, passwordDisplay,
	)
}
