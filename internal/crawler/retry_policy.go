package crawler

import (
	"context"
	"errors"
	"time"
)

// LinearRetryPolicy retries a fixed number of attempts. Attempt k (1-based)
// waits Delay*k before it runs, and a failed attempt that will be retried is
// followed by Pause.
type LinearRetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Pause       time.Duration
}

// NewLinearRetryPolicy builds a policy, defaulting to three attempts.
func NewLinearRetryPolicy(maxAttempts int, delay, pause time.Duration) LinearRetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return LinearRetryPolicy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		Pause:       pause,
	}
}

// Backoff returns the wait before attempt (1-based).
func (p LinearRetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.Delay * time.Duration(attempt)
}

// ShouldRetry decides whether another attempt follows a failed attempt.
func (p LinearRetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.MaxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrBudgetReached) {
		return false
	}
	return true
}
