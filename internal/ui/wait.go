package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/retry"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

var (
	// ErrConditionNotMet is returned when a wait runs out of attempts.
	ErrConditionNotMet = errors.New("condition not met")

	errStillVisible = errors.New("element still visible")
)

// WaitOptions bounds a polling wait.
type WaitOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

// DefaultWaitOptions polls once a second for thirty seconds.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{Timeout: 30 * time.Second, Interval: time.Second}
}

func (o WaitOptions) retrySettings() retry.Settings {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}

	return retry.Settings{
		MaxAttempts: max(int(o.Timeout/o.Interval), 1),
		Interval:    o.Interval,
	}
}

// WaitForElementNotVisible polls until selector is no longer visible.
func WaitForElementNotVisible(ctx context.Context, log logrus.FieldLogger, page Page, selector string, opts WaitOptions) error {
	return retry.Do(ctx, log, opts.retrySettings(), func(context.Context) error {
		visible, err := page.Locator(selector).IsVisible()
		if err != nil {
			return fmt.Errorf("checking visibility of %s: %w", selector, err)
		}

		if visible {
			return fmt.Errorf("%w: %s", errStillVisible, selector)
		}

		return nil
	})
}

// WaitForURL waits until the page URL matches. match is anything
// Page.WaitForURL accepts: a glob string, a *regexp.Regexp or a
// func(string) bool. A timeout is reported as ErrConditionNotMet.
func WaitForURL(page Page, match any, opts WaitOptions) error {
	waitOpts := playwright.PageWaitForURLOptions{}
	if opts.Timeout > 0 {
		waitOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}

	err := page.WaitForURL(match, waitOpts)
	if err == nil {
		return nil
	}

	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: url %s within %s: %w", ErrConditionNotMet, page.URL(), opts.Timeout, err)
	}

	return fmt.Errorf("waiting for url: %w", err)
}

// WaitForCondition polls condition until it returns true. The last failure
// names description.
func WaitForCondition(
	ctx context.Context,
	log logrus.FieldLogger,
	description string,
	condition func(ctx context.Context) (bool, error),
	opts WaitOptions,
) error {
	return retry.Do(ctx, log, opts.retrySettings(), func(ctx context.Context) error {
		ok, err := condition(ctx)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("%w: %s", ErrConditionNotMet, description)
		}

		return nil
	})
}
