package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithExponentialBackoff_Success(t *testing.T) {
	t.Parallel()
	attempts := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestWithExponentialBackoff_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, WithInitialDelay(10*time.Millisecond))

	if err != nil {
		t.Errorf("Expected no error after retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestWithExponentialBackoff_MaxRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return errors.New("persistent error")
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))

	if err == nil {
		t.Error("Expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestWithExponentialBackoff_FatalNotRetried(t *testing.T) {
	t.Parallel()
	attempts := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return Fatal(errors.New("bad input"))
	}, WithInitialDelay(time.Millisecond))

	if err == nil {
		t.Error("Expected fatal error to surface")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for fatal error, got: %d", attempts)
	}
}

func TestWithExponentialBackoff_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := WithExponentialBackoff(ctx, func() error {
		attempts++
		return errors.New("still failing")
	}, WithInitialDelay(time.Hour))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()
	if IsFatal(errors.New("plain")) {
		t.Error("plain error should not be fatal")
	}
	if !IsFatal(Fatal(errors.New("wrapped"))) {
		t.Error("wrapped error should be fatal")
	}
	if Fatal(nil) != nil {
		t.Error("Fatal(nil) should be nil")
	}
}

func TestPolicy_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()
	attempts := 0
	var notified []int

	p := Policy{
		MaxAttempts:  4,
		InitialDelay: time.Millisecond,
		OnRetry:      func(attempt int, _ error) { notified = append(notified, attempt) },
	}
	err := p.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not ready")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
	if len(notified) != 2 {
		t.Errorf("Expected 2 retry notifications, got: %v", notified)
	}
}

func TestPolicy_NonRetryableClassStops(t *testing.T) {
	t.Parallel()
	attempts := 0
	sentinel := errors.New("permission denied")

	p := Policy{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		Retryable:    func(err error) bool { return !errors.Is(err, sentinel) },
	}
	err := p.Do(context.Background(), func() error {
		attempts++
		return sentinel
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for non-retryable class, got: %d", attempts)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected sentinel in chain, got: %v", err)
	}
}

func TestPolicy_ExhaustsAttempts(t *testing.T) {
	t.Parallel()
	attempts := 0
	p := Policy{MaxAttempts: 3, InitialDelay: time.Millisecond}
	err := p.Do(context.Background(), func() error {
		attempts++
		return errors.New("flaky")
	})

	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("Expected exactly 3 attempts, got: %d", attempts)
	}
}
