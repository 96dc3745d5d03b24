package useradmin

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how the non-fatal steps of a lifecycle operation
// are retried. The fatal step (identity deletion) is never retried.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
}

// DefaultRetryPolicy retries transient failures twice beyond the first attempt
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
	}
}

func (p RetryPolicy) run(ctx context.Context, fn func() error) error {
	if p.MaxAttempts <= 1 {
		return fn()
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}

	return backoff.Retry(fn, backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)),
		ctx,
	))
}
