// Package metrics provides test execution metrics collection and aggregation.
package metrics

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Collector interface for metrics collection
type Collector interface {
	Start(ctx context.Context) error
	Stop() error
	InitializeTest(testName string)
	RecordTestResult(metric *TestExecutionMetric)
	RecordArtifact(metric ArtifactMetric)
	GetTestMetrics() []TestExecutionMetric
	GetHistory(testName string) []TestExecutionMetric
	GetArtifactMetrics() []ArtifactMetric
	GetSummary() SummaryMetric
	Analyze() Analysis
	GenerateReport() template.HTML
}

// collector implements Collector interface
type collector struct {
	log             logrus.FieldLogger
	mu              sync.RWMutex
	runs            map[string][]TestExecutionMetric
	order           []string
	artifactMetrics []ArtifactMetric
	startTime       time.Time
}

// NewCollector creates a new metrics collector
func NewCollector(log logrus.FieldLogger) Collector {
	return &collector{
		log:             log.WithField("component", "metrics_collector"),
		runs:            make(map[string][]TestExecutionMetric, 50),
		order:           make([]string, 0, 50),
		artifactMetrics: make([]ArtifactMetric, 0, 100),
	}
}

func (c *collector) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()

	c.log.Debug("metrics collector started")

	return nil
}

func (c *collector) Stop() error {
	c.log.Debug("metrics collector stopped")

	return nil
}

// InitializeTest clears the history slot for testName, creating it if needed.
func (c *collector) InitializeTest(testName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.runs[testName]; !ok {
		c.order = append(c.order, testName)
	}

	c.runs[testName] = make([]TestExecutionMetric, 0, 1)
}

// RecordTestResult appends a run to the test's history.
func (c *collector) RecordTestResult(metric *TestExecutionMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := *metric
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	if _, ok := c.runs[m.TestName]; !ok {
		c.order = append(c.order, m.TestName)
	}

	c.runs[m.TestName] = append(c.runs[m.TestName], m)
}

func (c *collector) RecordArtifact(metric ArtifactMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifactMetrics = append(c.artifactMetrics, metric)
}

// GetTestMetrics returns the last run of every test, in first-seen order.
func (c *collector) GetTestMetrics() []TestExecutionMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.latestLocked()
}

func (c *collector) GetHistory(testName string) []TestExecutionMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Return copy to avoid race conditions
	result := make([]TestExecutionMetric, len(c.runs[testName]))
	copy(result, c.runs[testName])

	return result
}

func (c *collector) GetArtifactMetrics() []ArtifactMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]ArtifactMetric, len(c.artifactMetrics))
	copy(result, c.artifactMetrics)

	return result
}

func (c *collector) GetSummary() SummaryMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := SummaryMetric{
		Artifacts: len(c.artifactMetrics),
	}

	if !c.startTime.IsZero() {
		summary.TotalDuration = time.Since(c.startTime)
	}

	for _, am := range c.artifactMetrics {
		summary.TotalArtifactSize += am.SizeBytes
	}

	for _, tm := range c.latestLocked() {
		summary.TotalTests++

		switch {
		case tm.Skipped():
			summary.SkippedTests++
		case tm.Failed():
			summary.FailedTests++
		default:
			summary.PassedTests++
		}
	}

	return summary
}

func (c *collector) Analyze() Analysis {
	return Analyze(c.GetTestMetrics())
}

func (c *collector) GenerateReport() template.HTML {
	return RenderReport(c.Analyze())
}

// latestLocked must be called with mu held.
func (c *collector) latestLocked() []TestExecutionMetric {
	result := make([]TestExecutionMetric, 0, len(c.order))

	for _, name := range c.order {
		runs := c.runs[name]
		if len(runs) == 0 {
			continue
		}

		result = append(result, runs[len(runs)-1])
	}

	return result
}

// Compile-time interface compliance check
var _ Collector = (*collector)(nil)
