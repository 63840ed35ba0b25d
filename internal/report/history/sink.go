package history

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/ethpandaops/e2e-harness/internal/metrics"
	"github.com/sirupsen/logrus"
)

const (
	insertExecutions = "INSERT INTO test_executions (run_id, test_name, category, outcome, passed, duration_ms, failure_step, error_message, executed_at)"
	insertArtifacts  = "INSERT INTO test_artifacts (run_id, test_name, kind, path, size_bytes, created_at)"
)

// Sink persists one run's results.
type Sink interface {
	Write(ctx context.Context, runID string, tests []metrics.TestExecutionMetric, artifacts []metrics.ArtifactMetric) error
	Close() error
}

// NewSink connects to the history database, or returns a no-op sink when
// history is disabled.
func NewSink(ctx context.Context, log logrus.FieldLogger, settings config.HistorySettings) (Sink, error) {
	if !settings.Enabled {
		return noopSink{}, nil
	}

	if settings.Database == "" {
		return nil, errDatabaseRequired
	}

	conn, err := open(ctx, settings, settings.Database)
	if err != nil {
		return nil, err
	}

	return newClickHouseSink(log, conn), nil
}

type clickHouseSink struct {
	log  logrus.FieldLogger
	conn driver.Conn
}

func newClickHouseSink(log logrus.FieldLogger, conn driver.Conn) *clickHouseSink {
	return &clickHouseSink{
		log:  log.WithField("component", "history_sink"),
		conn: conn,
	}
}

// Write inserts every test result and artifact in two batches.
func (s *clickHouseSink) Write(
	ctx context.Context,
	runID string,
	tests []metrics.TestExecutionMetric,
	artifacts []metrics.ArtifactMetric,
) error {
	if len(tests) > 0 {
		err := s.send(ctx, insertExecutions, len(tests), func(batch driver.Batch, i int) error {
			t := tests[i]

			var passed uint8
			if t.Passed {
				passed = 1
			}

			return batch.Append(
				runID,
				t.TestName,
				t.Category,
				string(t.Outcome),
				passed,
				uint64(t.Duration.Milliseconds()), // #nosec G115 -- durations are non-negative
				t.FailureStep,
				t.ErrorMessage,
				timestampOrNow(t.Timestamp),
			)
		})
		if err != nil {
			return fmt.Errorf("writing test executions: %w", err)
		}
	}

	if len(artifacts) > 0 {
		err := s.send(ctx, insertArtifacts, len(artifacts), func(batch driver.Batch, i int) error {
			a := artifacts[i]

			return batch.Append(runID, a.TestName, string(a.Kind), a.Path, a.SizeBytes, timestampOrNow(a.Timestamp))
		})
		if err != nil {
			return fmt.Errorf("writing test artifacts: %w", err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"run_id":    runID,
		"tests":     len(tests),
		"artifacts": len(artifacts),
	}).Info("exported run to history")

	return nil
}

func (s *clickHouseSink) send(ctx context.Context, query string, n int, appendRow func(driver.Batch, int) error) error {
	batch, err := s.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for i := 0; i < n; i++ {
		if err := appendRow(batch, i); err != nil {
			_ = batch.Abort()

			return fmt.Errorf("failed to append row %d: %w", i, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

func (s *clickHouseSink) Close() error {
	return s.conn.Close()
}

func timestampOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}

	return t.UTC()
}

// Discard returns a sink that drops every run.
func Discard() Sink {
	return noopSink{}
}

type noopSink struct{}

func (noopSink) Write(context.Context, string, []metrics.TestExecutionMetric, []metrics.ArtifactMetric) error {
	return nil
}

func (noopSink) Close() error { return nil }

// Compile-time interface compliance check
var (
	_ Sink = (*clickHouseSink)(nil)
	_ Sink = noopSink{}
)
