package config

const (
	// DefaultEnvironment is used when no environment variable names one.
	DefaultEnvironment = "Development"
	// BaseSettingsFile is the required base configuration file name.
	BaseSettingsFile = "appsettings.json"
	// EnvironmentVar is checked first for the environment name.
	EnvironmentVar = "ASPNETCORE_ENVIRONMENT"
	// TestEnvironmentVar is checked when EnvironmentVar is unset.
	TestEnvironmentVar = "TEST_ENVIRONMENT"
	// ConfigDirVar points at the directory holding appsettings files.
	ConfigDirVar = "E2E_CONFIG_DIR"
	// ResultsDir is the root of every run artifact.
	ResultsDir = "TestResults"
	// ReportsDir holds the HTML report and its attachment folders.
	ReportsDir = ResultsDir + "/Reports"
	// VideosDirName is the per-test video folder under ReportsDir.
	VideosDirName = "Videos"
	// TracesDirName is the trace archive folder under ReportsDir.
	TracesDirName = "Traces"
	// LogsDirName is the transcript folder under ReportsDir.
	LogsDirName = "Logs"
	// TracesDir is the default trace directory.
	TracesDir = ReportsDir + "/" + TracesDirName
	// ScreenshotsDir is the default failure screenshot directory.
	ScreenshotsDir = ResultsDir + "/Screenshots"
	// ReportFile is the HTML report written under ReportsDir.
	ReportFile = "index.html"
	// MetricsFile is the machine-readable run summary written under ReportsDir.
	MetricsFile = "metrics.json"
	// ArtifactTimestampLayout formats artifact file name suffixes.
	ArtifactTimestampLayout = "20060102_150405"
)
