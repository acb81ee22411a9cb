package retry

import (
	"context"
	"time"
)

// Policy is a declared retry policy for a call site: how many attempts,
// what backoff, and which errors are worth retrying. It replaces ad hoc
// inline retry loops so the policy is visible where the call is made.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the delay after the first failed attempt. Each
	// subsequent delay doubles, capped at MaxDelay.
	InitialDelay time.Duration

	// MaxDelay caps the backoff. Zero means no cap.
	MaxDelay time.Duration

	// Retryable classifies errors. When nil every error is retryable
	// except those marked with Fatal.
	Retryable func(error) bool

	// OnRetry is called before each re-attempt with the attempt number
	// just failed (1-based) and its error. Used for per-attempt logging.
	OnRetry func(attempt int, err error)
}

// Do runs the operation under the policy.
func (p Policy) Do(ctx context.Context, operation func() error) error {
	maxRetries := p.MaxAttempts - 1
	if maxRetries < 0 {
		maxRetries = 0
	}

	attempt := 0
	wrapped := func() error {
		attempt++
		err := operation()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) && !IsFatal(err) {
			return Fatal(err)
		}
		if p.OnRetry != nil && attempt <= maxRetries && !IsFatal(err) {
			p.OnRetry(attempt, err)
		}
		return err
	}

	opts := []Option{WithMaxRetries(maxRetries)}
	if p.InitialDelay > 0 {
		opts = append(opts, WithInitialDelay(p.InitialDelay))
	}
	if p.MaxDelay > 0 {
		opts = append(opts, WithMaxDelay(p.MaxDelay))
	}
	return WithExponentialBackoff(ctx, wrapped, opts...)
}
