package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		envFile string
		runTUI  bool
	}{
		{name: "no args", args: []string{"e2e-harness"}, runTUI: true},
		{name: "env equals only", args: []string{"e2e-harness", "--env=ci.env"}, envFile: "ci.env", runTUI: true},
		{name: "env value only", args: []string{"e2e-harness", "--env", "ci.env"}, envFile: "ci.env", runTUI: true},
		{name: "subcommand", args: []string{"e2e-harness", "show-config"}},
		{name: "subcommand with env", args: []string{"e2e-harness", "summary", "--env", "ci.env"}, envFile: "ci.env"},
		{name: "two subcommand args", args: []string{"e2e-harness", "history", "status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envFile, runTUI := parseArgs(tt.args)
			assert.Equal(t, tt.envFile, envFile)
			assert.Equal(t, tt.runTUI, runTUI)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	require.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "ci.env")
	require.NoError(t, os.WriteFile(path, []byte("E2E_HARNESS_MAIN_TEST=1\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("E2E_HARNESS_MAIN_TEST") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "1", os.Getenv("E2E_HARNESS_MAIN_TEST"))
}
