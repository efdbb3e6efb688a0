package pipeline

import (
	"context"
	"time"
)

// sleepFunc blocks for the given duration or until the context is
// canceled. Injected so tests can run the gates without real delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

// sleepContext is the production sleepFunc.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// poll invokes check up to maxAttempts times, sleeping interval between
// attempts. It returns check's value as soon as check reports done, and
// ErrPollTimeout after the last unsuccessful attempt. A non-nil error
// from check aborts polling immediately. No backoff: the interval is
// fixed per call site, and every gate in the pipeline is built on this
// one helper.
func poll[T any](ctx context.Context, sleep sleepFunc, interval time.Duration, maxAttempts int, check func(ctx context.Context) (T, bool, error)) (T, error) {
	var zero T

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		value, done, err := check(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			return value, nil
		}

		if attempt < maxAttempts {
			if err := sleep(ctx, interval); err != nil {
				return zero, err
			}
		}
	}

	return zero, ErrPollTimeout
}
