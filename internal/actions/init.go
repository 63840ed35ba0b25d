package actions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethpandaops/e2e-harness/internal/config"
)

// ErrSettingsExist is returned when init would overwrite a settings file.
var ErrSettingsExist = errors.New("settings file already exists")

// InitAnswers are the values a new project is scaffolded with.
type InitAnswers struct {
	Environment string
	BaseURL     string
	APIBaseURL  string
	Browser     string
	Headless    bool
	TraceMode   string
}

// DefaultInitAnswers mirrors the built-in defaults.
func DefaultInitAnswers() InitAnswers {
	d := config.Defaults()

	return InitAnswers{
		Environment: d.Environment.Name,
		BaseURL:     d.Environment.BaseURL,
		APIBaseURL:  d.Environment.APIBaseURL,
		Browser:     d.Browser.Type,
		Headless:    d.Browser.Headless,
		TraceMode:   d.Trace.Mode,
	}
}

// environmentOverlay is the subset written to appsettings.{Environment}.json.
type environmentOverlay struct {
	Environment struct {
		BaseURL    string `json:"BaseUrl"`
		APIBaseURL string `json:"ApiBaseUrl"`
	} `json:"Environment"`
}

// Scaffold writes appsettings.json with every default and an environment
// overlay holding the URLs. Existing files are kept unless force is set.
func Scaffold(dir string, answers InitAnswers, force bool) ([]string, error) {
	settings := config.Defaults()
	settings.Environment.Name = answers.Environment
	settings.Environment.BaseURL = answers.BaseURL
	settings.Environment.APIBaseURL = answers.APIBaseURL
	settings.Browser.Type = answers.Browser
	settings.Browser.Headless = answers.Headless
	settings.Trace.Mode = answers.TraceMode

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	overlay := environmentOverlay{}
	overlay.Environment.BaseURL = answers.BaseURL
	overlay.Environment.APIBaseURL = answers.APIBaseURL

	files := []struct {
		name  string
		value any
	}{
		{name: config.BaseSettingsFile, value: settings},
		{name: "appsettings." + answers.Environment + ".json", value: overlay},
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	written := make([]string, 0, len(files))

	for _, f := range files {
		path := filepath.Join(dir, f.name)

		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%w: %s", ErrSettingsExist, path)
		}

		data, err := json.MarshalIndent(f.value, "", "  ")
		if err != nil {
			return written, fmt.Errorf("failed to encode %s: %w", f.name, err)
		}

		if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}

		written = append(written, path)
	}

	return written, nil
}
