package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks a template server failure: a transport error, a timeout
// or a 5xx response.
var ErrNetwork = errors.New("network error")

type retryable struct{ err error }

func (e *retryable) Error() string { return e.err.Error() }
func (e *retryable) Unwrap() error { return e.err }

// Retryable marks err as worth another attempt by [Retry]. It returns nil
// for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryable{err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var r *retryable
	return errors.As(err, &r)
}

// Retry calls fn up to attempts times, doubling delay between attempts.
// Errors not marked [Retryable] end the loop at once. A cancelled ctx ends
// the wait with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
