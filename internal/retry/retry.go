// Package retry implements the declarative retry policy shared by the
// ingestion and query paths: transient server errors, transport faults,
// and rate limits are retried with exponential backoff; everything else
// surfaces immediately.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// Policy bounds retry behavior for one API call.
type Policy struct {
	MaxRetries  int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// Notify observes each retry attempt before its delay elapses.
type Notify func(reason string, delay time.Duration)

// Retryable reports whether the error kind is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, domain.ErrTransientServer) ||
		errors.Is(err, domain.ErrTransport) ||
		errors.Is(err, domain.ErrRateLimited)
}

// Reason names the retryable error kind for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrTransientServer):
		return "server_error"
	case errors.Is(err, domain.ErrTransport):
		return "transport"
	default:
		return "other"
	}
}

// retryAfterHint extracts the server's Retry-After hint, if any.
func retryAfterHint(err error) (time.Duration, bool) {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}
	return 0, false
}

// Do runs fn up to 1+MaxRetries times. Delays follow an exponential
// schedule capped at BackoffCap; a Retry-After hint overrides the
// schedule for that attempt since it is the server's own estimate.
// Cancellation of ctx aborts the wait and returns ctx.Err().
func (p Policy) Do(ctx context.Context, fn func() error, notify Notify) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BackoffBase
	b.MaxInterval = p.BackoffCap
	b.MaxElapsedTime = 0 // bounded by attempt count, not wall clock
	b.Reset()

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !Retryable(err) || attempt >= p.MaxRetries {
			return err
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			return err
		}
		if hint, ok := retryAfterHint(err); ok {
			delay = hint
			if delay > p.BackoffCap {
				delay = p.BackoffCap
			}
		}

		if notify != nil {
			notify(Reason(err), delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
