package metrics

import "time"

// Outcome is the final verdict of a test.
type Outcome string

const (
	// OutcomePassed means the test body completed without failures.
	OutcomePassed Outcome = "Passed"
	// OutcomeFailed means the test reported a failure.
	OutcomeFailed Outcome = "Failed"
	// OutcomeInconclusive means the test skipped itself after starting work.
	OutcomeInconclusive Outcome = "Inconclusive"
	// OutcomeTimeout means the failure was a deadline being exceeded.
	OutcomeTimeout Outcome = "Timeout"
	// OutcomeNotExecuted means the test skipped before doing anything.
	OutcomeNotExecuted Outcome = "NotExecuted"
)

// TestExecutionMetric captures one run of one test
type TestExecutionMetric struct {
	TestName     string        `json:"test_name"`
	Duration     time.Duration `json:"duration"`
	Passed       bool          `json:"passed"`
	Outcome      Outcome       `json:"outcome"`
	FailureStep  string        `json:"failure_step,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Category     string        `json:"category"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Skipped reports whether the run ended without a verdict.
func (m TestExecutionMetric) Skipped() bool {
	return m.Outcome == OutcomeNotExecuted || m.Outcome == OutcomeInconclusive
}

// Failed reports whether the run failed or timed out. Runs recorded without an
// outcome fall back to Passed.
func (m TestExecutionMetric) Failed() bool {
	switch m.Outcome {
	case OutcomeFailed, OutcomeTimeout:
		return true
	case "":
		return !m.Passed
	default:
		return false
	}
}
