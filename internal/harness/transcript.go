package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// transcript is a logrus hook that keeps a plain-text copy of every line a
// session logs.
type transcript struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	formatter logrus.Formatter
}

func newTranscript() *transcript {
	return &transcript{
		formatter: &logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		},
	}
}

func (t *transcript) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (t *transcript) Fire(entry *logrus.Entry) error {
	line, err := t.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("formatting transcript line: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(line)

	return nil
}

// String returns everything captured so far.
func (t *transcript) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.buf.String()
}

// WriteFile saves the transcript to path.
func (t *transcript) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(t.String()), 0o600); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}

	return nil
}

// sessionLogger clones root's output, formatter, level and hooks into a new
// logger that also feeds hook.
func sessionLogger(root *logrus.Logger, hook logrus.Hook) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(root.Out)
	logger.SetFormatter(root.Formatter)
	logger.SetLevel(root.GetLevel())
	logger.SetReportCaller(root.ReportCaller)

	hooks := make(logrus.LevelHooks, len(root.Hooks))
	for level, levelHooks := range root.Hooks {
		hooks[level] = append(hooks[level], levelHooks...)
	}

	logger.ReplaceHooks(hooks)
	logger.AddHook(hook)

	return logger
}

// rootLogger finds the *logrus.Logger behind a field logger.
func rootLogger(log logrus.FieldLogger) *logrus.Logger {
	switch l := log.(type) {
	case *logrus.Logger:
		return l
	case *logrus.Entry:
		return l.Logger
	default:
		return logrus.StandardLogger()
	}
}
