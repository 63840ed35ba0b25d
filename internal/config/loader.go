package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadOptions controls where settings are read from.
type LoadOptions struct {
	// Dir holds appsettings files. Empty means E2E_CONFIG_DIR, then the first
	// parent of the working directory that contains a base file.
	Dir string
	// Environment overrides the environment name lookup.
	Environment string
	// EnvFile is a dotenv file loaded before environment overrides are applied.
	// Empty means ".env", which may be absent.
	EnvFile string
	// Environ replaces os.Environ for override lookup.
	Environ []string
}

var (
	defaultOnce     sync.Once
	defaultSettings *TestSettings
	errDefault      error
)

// Default returns the process-wide settings, loading them on first use.
func Default() (*TestSettings, error) {
	defaultOnce.Do(func() {
		defaultSettings, errDefault = Load(LoadOptions{})
	})

	return defaultSettings, errDefault
}

// Load merges defaults, the base file, the environment overlay and environment
// variables, in that order.
func Load(opts LoadOptions) (*TestSettings, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}

	envName := opts.Environment
	if envName == "" {
		envName = ResolveEnvironment(environ)
	}

	dir := opts.Dir
	if dir == "" {
		dir = discoverDir(environ)
	}

	settings := Defaults()

	if dir != "" {
		base, err := findSettingsFile(dir, "appsettings")
		if err != nil {
			return nil, err
		}

		if base != "" {
			if err := decodeFile(base, settings); err != nil {
				return nil, err
			}
			settings.Sources = append(settings.Sources, base)
		}

		overlay, err := findSettingsFile(dir, "appsettings."+envName)
		if err != nil {
			return nil, err
		}

		if overlay != "" {
			if err := decodeFile(overlay, settings); err != nil {
				return nil, err
			}
			settings.Sources = append(settings.Sources, overlay)
		}
	}

	if err := applyEnvOverrides(settings, environ); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	settings.Environment.Name = envName

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return settings, nil
}

// ResolveEnvironment picks the environment name from the given environment.
func ResolveEnvironment(environ []string) string {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	for _, key := range []string{EnvironmentVar, TestEnvironmentVar} {
		if v := vars[key]; v != "" {
			return v
		}
	}

	return DefaultEnvironment
}

func loadEnvFile(file string) error {
	if file == "" {
		file = ".env"
	}

	if err := godotenv.Load(file); err != nil {
		// The default dotenv file is optional.
		if file == ".env" && os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to load env file '%s': %w", file, err)
	}

	return nil
}

func discoverDir(environ []string) string {
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == ConfigDirVar && v != "" {
			return v
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// go test runs inside the package directory, so walk up to the first
	// directory that carries a base file.
	for dir := wd; ; dir = filepath.Dir(dir) {
		if path, _ := findSettingsFile(dir, "appsettings"); path != "" {
			return dir
		}

		if parent := filepath.Dir(dir); parent == dir {
			return ""
		}
	}
}

// findSettingsFile returns the first existing name.{json,yaml,yml} in dir.
func findSettingsFile(dir, name string) (string, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)

		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}

		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
	}

	return "", nil
}

func decodeFile(path string, settings *TestSettings) error {
	// #nosec G304 -- path comes from the configured settings directory
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	switch filepath.Ext(path) {
	case ".json":
		// Keys match case-insensitively, as they do for environment overrides.
		if err := json.Unmarshal(data, settings); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	return nil
}
