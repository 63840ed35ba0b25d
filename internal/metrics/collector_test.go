package metrics

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(c Collector, name string, seconds float64, passed bool, step, category string) {
	outcome := OutcomePassed
	if !passed {
		outcome = OutcomeFailed
	}

	c.RecordTestResult(&TestExecutionMetric{
		TestName:    name,
		Duration:    time.Duration(seconds * float64(time.Second)),
		Passed:      passed,
		Outcome:     outcome,
		FailureStep: step,
		Category:    category,
	})
}

func TestCollector_AnalysisTimingAndFailures(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())
	record(c, "A", 2.0, true, "", "UI Tests")
	record(c, "B", 5.0, false, "Checkout", "UI Tests")
	record(c, "C", 1.0, true, "", "API Tests")

	analysis := c.Analyze()
	assert.Equal(t, 3, analysis.TotalTests)
	assert.Equal(t, "B", analysis.Slowest.TestName)
	assert.Equal(t, "C", analysis.Fastest.TestName)
	assert.InDelta(t, 2.6667, analysis.AverageDuration.Seconds(), 0.001)
	require.Len(t, analysis.Failures, 1)
	assert.Equal(t, "B", analysis.Failures[0].TestName)
	assert.Equal(t, "Checkout", analysis.Failures[0].FailureStep)
	assert.Equal(t, "UI Tests", analysis.Failures[0].Category)

	fragment := string(c.GenerateReport())
	assert.Contains(t, fragment, "<div class='test-analysis'>")
	assert.Contains(t, fragment, "Average Duration: 2.67 seconds")
	assert.Contains(t, fragment, "Slowest Test: B (5.00s)")
	assert.Contains(t, fragment, "Fastest Test: C (1.00s)")
	assert.Contains(t, fragment, "Failure Analysis")
	assert.Contains(t, fragment, "Failed at step: Checkout")
	assert.Contains(t, fragment, "Category: UI Tests")
}

func TestCollector_EmptyReport(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())
	assert.Empty(t, string(c.GenerateReport()))

	c.InitializeTest("never-recorded")
	assert.Empty(t, string(c.GenerateReport()))
	assert.Empty(t, c.GetTestMetrics())
}

func TestCollector_SingleTestIsSlowestAndFastest(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())
	record(c, "Only", 3.0, true, "", "UI Tests")

	analysis := c.Analyze()
	assert.Equal(t, "Only", analysis.Slowest.TestName)
	assert.Equal(t, "Only", analysis.Fastest.TestName)
	assert.Empty(t, analysis.Failures)
	assert.NotContains(t, string(c.GenerateReport()), "Failure Analysis")
}

func TestCollector_OnlyLastRunCounts(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())
	c.InitializeTest("Flaky")
	record(c, "Flaky", 9.0, false, "Login", "UI Tests")
	record(c, "Flaky", 1.0, true, "", "UI Tests")
	record(c, "Other", 2.0, true, "", "UI Tests")

	latest := c.GetTestMetrics()
	require.Len(t, latest, 2)
	assert.Equal(t, "Flaky", latest[0].TestName)
	assert.True(t, latest[0].Passed)

	analysis := c.Analyze()
	assert.Empty(t, analysis.Failures)
	assert.Equal(t, "Other", analysis.Slowest.TestName)
	assert.Len(t, c.GetHistory("Flaky"), 2)

	// Re-initializing drops earlier runs.
	c.InitializeTest("Flaky")
	assert.Empty(t, c.GetHistory("Flaky"))
	assert.Len(t, c.GetTestMetrics(), 1)
}

func TestCollector_TiesGoToFirstTest(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())
	record(c, "First", 2.0, true, "", "UI Tests")
	record(c, "Second", 2.0, true, "", "UI Tests")

	analysis := c.Analyze()
	assert.Equal(t, "First", analysis.Slowest.TestName)
	assert.Equal(t, "First", analysis.Fastest.TestName)
}

func TestCollector_Summary(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())
	require.NoError(t, c.Start(context.Background()))

	record(c, "pass", 1, true, "", "UI Tests")
	record(c, "fail", 1, false, "step", "UI Tests")
	c.RecordTestResult(&TestExecutionMetric{TestName: "skip", Passed: true, Outcome: OutcomeNotExecuted})
	c.RecordArtifact(ArtifactMetric{TestName: "fail", Kind: ArtifactTrace, SizeBytes: 1024})
	c.RecordArtifact(ArtifactMetric{TestName: "fail", Kind: ArtifactVideo, SizeBytes: 2048})

	summary := c.GetSummary()
	assert.Equal(t, 3, summary.TotalTests)
	assert.Equal(t, 1, summary.PassedTests)
	assert.Equal(t, 1, summary.FailedTests)
	assert.Equal(t, 1, summary.SkippedTests)
	assert.Equal(t, 2, summary.Artifacts)
	assert.Equal(t, int64(3072), summary.TotalArtifactSize)
	require.NoError(t, c.Stop())
}

func TestCollector_SkippedRunsAreNotFailures(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())
	record(c, "A", 1, true, "", "UI Tests")
	c.RecordTestResult(&TestExecutionMetric{
		TestName: "S",
		Duration: 2 * time.Second,
		Passed:   false,
		Outcome:  OutcomeNotExecuted,
		Category: "UI Tests",
	})
	c.RecordTestResult(&TestExecutionMetric{
		TestName: "T",
		Duration: 3 * time.Second,
		Outcome:  OutcomeTimeout,
		Category: "API Tests",
	})

	analysis := c.Analyze()
	require.Len(t, analysis.Failures, 1)
	assert.Equal(t, "T", analysis.Failures[0].TestName)
	assert.NotContains(t, string(c.GenerateReport()), "<strong>S</strong>")

	summary := c.GetSummary()
	assert.Equal(t, 1, summary.PassedTests)
	assert.Equal(t, 1, summary.FailedTests)
	assert.Equal(t, 1, summary.SkippedTests)
}

func TestTestExecutionMetric_Verdict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		metric  TestExecutionMetric
		failed  bool
		skipped bool
	}{
		{metric: TestExecutionMetric{Passed: true, Outcome: OutcomePassed}},
		{metric: TestExecutionMetric{Outcome: OutcomeFailed}, failed: true},
		{metric: TestExecutionMetric{Outcome: OutcomeTimeout}, failed: true},
		{metric: TestExecutionMetric{Outcome: OutcomeNotExecuted}, skipped: true},
		{metric: TestExecutionMetric{Outcome: OutcomeInconclusive}, skipped: true},
		{metric: TestExecutionMetric{Passed: false}, failed: true},
		{metric: TestExecutionMetric{Passed: true}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.failed, tt.metric.Failed(), "outcome %q", tt.metric.Outcome)
		assert.Equal(t, tt.skipped, tt.metric.Skipped(), "outcome %q", tt.metric.Outcome)
	}
}

func TestCollector_EscapesNames(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())
	record(c, "<script>alert(1)</script>", 1, false, "<b>", "UI Tests")

	fragment := string(c.GenerateReport())
	assert.NotContains(t, fragment, "<script>")
	assert.Contains(t, fragment, "&lt;script&gt;")
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			name := fmt.Sprintf("test-%d", i)
			c.InitializeTest(name)
			record(c, name, float64(i), true, "", "UI Tests")
		}(i)
	}

	wg.Wait()

	assert.Len(t, c.GetTestMetrics(), 20)
}
