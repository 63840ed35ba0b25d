package metrics

import "time"

// SummaryMetric provides aggregate statistics across the run
type SummaryMetric struct {
	TotalDuration     time.Duration `json:"total_duration"`
	TotalTests        int           `json:"total_tests"`
	PassedTests       int           `json:"passed_tests"`
	FailedTests       int           `json:"failed_tests"`
	SkippedTests      int           `json:"skipped_tests"`
	Artifacts         int           `json:"artifacts"`
	TotalArtifactSize int64         `json:"total_artifact_size"` // bytes
}
