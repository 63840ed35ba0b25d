package metrics

import "time"

// ArtifactKind identifies what a persisted artifact contains
type ArtifactKind string

const (
	// ArtifactVideo is a recorded page video.
	ArtifactVideo ArtifactKind = "video"
	// ArtifactTrace is a trace archive.
	ArtifactTrace ArtifactKind = "trace"
	// ArtifactLog is a test transcript.
	ArtifactLog ArtifactKind = "log"
	// ArtifactScreenshot is a failure screenshot.
	ArtifactScreenshot ArtifactKind = "screenshot"
)

// ArtifactMetric captures one file persisted for a test
type ArtifactMetric struct {
	TestName  string       `json:"test_name"`
	Kind      ArtifactKind `json:"kind"`
	Path      string       `json:"path"`
	SizeBytes int64        `json:"size_bytes"`
	Timestamp time.Time    `json:"timestamp"`
}
