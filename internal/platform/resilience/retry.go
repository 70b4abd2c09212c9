package resilience

import (
	"context"
	"errors"
	"time"
)

// RetryConfig bounds a retry loop. Attempts counts the first call.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
	// Retryable decides whether err deserves another attempt. Nil retries every error.
	Retryable func(err error) bool
	// BeforeRetry runs between attempts, e.g. to re-establish a session.
	// An error from it ends the loop and is returned joined with the attempt error.
	BeforeRetry func(ctx context.Context, attempt int, err error) error
}

// Retry calls fn until it succeeds, the error is not retryable, or attempts run out.
// It returns the number of attempts made alongside the last error.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context, attempt int) error) (int, error) {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return attempt - 1, lastErr
			}
			return attempt - 1, err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == attempts {
			break
		}
		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return attempt, lastErr
		}
		if cfg.BeforeRetry != nil {
			if err := cfg.BeforeRetry(ctx, attempt, lastErr); err != nil {
				return attempt, errors.Join(lastErr, err)
			}
		}
		if err := Sleep(ctx, cfg.Delay); err != nil {
			return attempt, lastErr
		}
	}

	return attempts, lastErr
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
