package resilience

import (
	"context"
	"time"
)

// Backoff is an exponential delay schedule: Base * 2^attempt.
type Backoff struct {
	Base       time.Duration
	MaxRetries int
}

func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}
	return b.Base << attempt
}

// Retry calls fn until it succeeds, retryable reports false, retries run
// out, or ctx is done. It returns the last error from fn.
func (b Backoff) Retry(ctx context.Context, retryable func(error) bool, fn func(ctx context.Context, attempt int) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if attempt >= b.MaxRetries || (retryable != nil && !retryable(err)) {
			return err
		}
		if waitErr := Sleep(ctx, b.Delay(attempt)); waitErr != nil {
			return err
		}
	}
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
