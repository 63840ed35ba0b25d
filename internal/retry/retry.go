// Package retry runs an operation a bounded number of times with a fixed
// wait between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxAttempts = 3
	defaultInterval    = time.Second
)

// ErrInterrupted is returned when the context ends while waiting between attempts.
var ErrInterrupted = errors.New("retry interrupted")

// Settings bounds a retry loop.
type Settings struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultSettings returns three attempts one second apart.
func DefaultSettings() Settings {
	return Settings{MaxAttempts: defaultMaxAttempts, Interval: defaultInterval}
}

// FromConfig converts the configured retry section.
func FromConfig(cfg config.RetrySettings) Settings {
	return Settings{MaxAttempts: cfg.MaxAttempts, Interval: cfg.RetryInterval()}
}

// Do calls op until it succeeds or MaxAttempts calls have failed, in which
// case the last error is returned as-is.
func Do(ctx context.Context, log logrus.FieldLogger, settings Settings, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, log, settings, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})

	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](
	ctx context.Context,
	log logrus.FieldLogger,
	settings Settings,
	op func(ctx context.Context) (T, error),
) (T, error) {
	maxAttempts := settings.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if attempt >= maxAttempts {
			log.WithError(err).WithField("attempts", attempt).Error("operation failed after all retry attempts")

			return result, err
		}

		log.WithError(err).Warnf(
			"Attempt %d of %d failed. Retrying in %s...",
			attempt, maxAttempts, settings.Interval,
		)

		select {
		case <-ctx.Done():
			var zero T

			return zero, fmt.Errorf("%w after %d attempts: %w", ErrInterrupted, attempt, errors.Join(ctx.Err(), err))
		case <-time.After(settings.Interval):
		}
	}
}
