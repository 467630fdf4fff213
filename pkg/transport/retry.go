// Package transport holds what the message transports share: the
// transport error sentinel and retry with exponential backoff.
package transport

import (
	"context"
	"errors"
	"time"
)

// ErrTransport marks a failed publish or fetch against an external
// collaborator such as Redis.
var ErrTransport = errors.New("transport error")

// RetryableError marks err as transient for [RetryWithBackoff].
type RetryableError struct{ Err error }

// Retryable wraps err so RetryWithBackoff tries again. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether any error in err's chain is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff settings of [RetryWithBackoff]. Tests shorten RetryDelay.
var (
	RetryDelay    = 200 * time.Millisecond
	RetryAttempts = 3
)

// RetryWithBackoff calls fn until it succeeds, returns a non-retryable
// error, or RetryAttempts calls have failed. The delay doubles after each
// failure. Cancelling ctx aborts the wait.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := RetryDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt >= RetryAttempts {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
