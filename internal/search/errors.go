package search

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrFatalLookup marks auth/permission and malformed-request failures.
	// Never retried.
	ErrFatalLookup = errors.New("fatal lookup error")

	// ErrRetriesExhausted marks a transient failure that outlived every retry.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// StatusError is a non-2xx provider response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status %d: %s", e.Code, e.Body)
}

// IsTransient reports whether err is worth retrying: timeouts, connection
// errors, 5xx, and 429. Auth failures and other 4xx are fatal.
func IsTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || se.Code >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	// url.Error and friends wrap the transport failure; treat anything that
	// isn't an explicit fatal classification as transient network trouble.
	return !errors.Is(err, ErrFatalLookup)
}
