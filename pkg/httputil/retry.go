package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient outcomes (such as a 202 "still computing" reply) with this
// type so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Retry executes fn up to attempts times, waiting delay on clock between
// attempts. It only retries errors wrapped with [RetryableError]; other errors
// are returned immediately. The delay is constant. Returns the last error if
// all attempts fail, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, clock clockwork.Clock, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(delay):
			}
		}
	}
	return lastErr
}
