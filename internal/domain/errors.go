package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation signals a record rejected before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrDimensionMismatch signals a vector whose length does not match the model dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrUnsupportedOperation signals an operation the active model cannot serve.
	ErrUnsupportedOperation = errors.New("operation not supported by embedding model")
	// ErrNotFound signals a missing contract or record on the remote service.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited signals remote backpressure (HTTP 429).
	ErrRateLimited = errors.New("rate limited")
	// ErrTransientServer signals a retryable server-side failure (5xx, timeout).
	ErrTransientServer = errors.New("transient server error")
	// ErrPermanentServer signals a non-retryable server-side rejection (4xx).
	ErrPermanentServer = errors.New("permanent server error")
	// ErrTransport signals a connection-level fault.
	ErrTransport = errors.New("transport error")
	// ErrInvalidConfig signals malformed local configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidArgument signals a malformed caller-supplied argument.
	ErrInvalidArgument = errors.New("invalid argument")
)

// APIError carries the remote-reported status and message alongside the
// local error kind, so callers can tell rejected data from a misbehaving
// network.
type APIError struct {
	Status  int
	Message string
	Kind    error
	// RetryAfter is the server's backpressure hint on 429 responses,
	// zero when absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: server returned %d: %s", e.Kind.Error(), e.Status, e.Message)
	}
	return fmt.Sprintf("%s: server returned %d", e.Kind.Error(), e.Status)
}

func (e *APIError) Unwrap() error { return e.Kind }

// NewAPIError wraps a remote failure with its local kind.
func NewAPIError(status int, message string, kind error) error {
	return &APIError{Status: status, Message: message, Kind: kind}
}
