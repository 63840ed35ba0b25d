package actions

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/ethpandaops/e2e-harness/internal/report/console"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "TestResults")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Reports", "Videos"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Reports", "index.html"), []byte("<html></html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Reports", "Videos", "a.webm"), []byte("webm"), 0o600))

	usage, err := Usage(dir)
	require.NoError(t, err)
	assert.Equal(t, ResultsUsage{Files: 2, Bytes: 17}, usage)

	require.NoError(t, Clean(dir, false, false))
	assert.DirExists(t, dir, "unconfirmed clean keeps files")

	require.NoError(t, Clean(dir, false, true))
	assert.NoDirExists(t, dir)

	require.NoError(t, Clean(dir, false, true), "missing directory is not an error")
}

func TestClean_RefusesUnsafeDirs(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	for _, dir := range []string{"", ".", wd, "/"} {
		require.ErrorIs(t, Clean(dir, false, true), ErrUnsafeResultsDir, dir)
	}
}

func TestSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.MetricsFile)
	snapshot := console.Snapshot{
		RunID: "run-1",
		Summary: metrics.SummaryMetric{
			TotalTests:  2,
			PassedTests: 1,
			FailedTests: 1,
		},
		Tests: []metrics.TestExecutionMetric{
			{TestName: "TestLogin", Passed: true, Outcome: metrics.OutcomePassed, Duration: time.Second},
			{TestName: "TestCheckout", Outcome: metrics.OutcomeFailed, FailureStep: "pay", Duration: 2 * time.Second},
		},
	}

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	var out bytes.Buffer
	require.NoError(t, Summary(logrus.New(), path, &out))
	assert.Contains(t, out.String(), "run-1")
	assert.Contains(t, out.String(), "TestCheckout")

	require.Error(t, Summary(logrus.New(), filepath.Join(t.TempDir(), "missing.json"), &out))
}

func TestScaffold(t *testing.T) {
	dir := t.TempDir()
	answers := DefaultInitAnswers()
	answers.Environment = "Staging"
	answers.BaseURL = "https://staging.shop.example.com"
	answers.APIBaseURL = "https://staging.shop.example.com/api"
	answers.Browser = "firefox"
	answers.TraceMode = "Always"

	written, err := Scaffold(dir, answers, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "appsettings.json"),
		filepath.Join(dir, "appsettings.Staging.json"),
	}, written)

	settings, err := config.Load(config.LoadOptions{
		Dir:         dir,
		Environment: "Staging",
		Environ:     []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://staging.shop.example.com", settings.Environment.BaseURL)
	assert.Equal(t, "firefox", settings.Browser.Type)
	assert.Equal(t, "Always", settings.Trace.Mode)
	assert.Len(t, settings.Sources, 2)

	_, err = Scaffold(dir, answers, false)
	require.ErrorIs(t, err, ErrSettingsExist)

	_, err = Scaffold(dir, answers, true)
	require.NoError(t, err)

	answers.BaseURL = "not a url"
	_, err = Scaffold(t.TempDir(), answers, false)
	require.Error(t, err)
}
