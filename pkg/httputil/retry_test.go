package httputil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

var errBusy = errors.New("busy")

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(errBusy)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, errBusy) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if err.Error() != errBusy.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(errBusy) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetrySuccessFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), clockwork.NewFakeClock(), 3, time.Second, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}
}

func TestRetryNonRetryableStops(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), clockwork.NewFakeClock(), 3, time.Second, func() error {
		calls++
		return errBusy
	})
	if err != errBusy {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}
}

func TestRetryWaitsDelayBetweenAttempts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	calls := 0
	done := make(chan error, 1)

	go func() {
		done <- Retry(context.Background(), clock, 2, 2*time.Second, func() error {
			calls++
			return Retryable(errBusy)
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("retry never waited: %v", err)
	}
	clock.Advance(2 * time.Second)

	err := <-done
	if !errors.Is(err, errBusy) {
		t.Errorf("Should return last error: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should attempt twice: %d", calls)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, clockwork.NewFakeClock(), 3, time.Second, func() error {
		return Retryable(errBusy)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
