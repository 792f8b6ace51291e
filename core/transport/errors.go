package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRejected indicates the backend rejected authorization even after
	// one refresh attempt. The session has been torn down by the time callers
	// see this error.
	ErrAuthRejected = errors.New("authorization rejected after refresh")

	// ErrBodyNotReplayable indicates the request carries a body without
	// GetBody, so the pipeline could not guarantee a safe replay.
	ErrBodyNotReplayable = errors.New("request body cannot be replayed")
)

// NetworkError is a transport-level failure: no HTTP response was received at
// all (connection refused, timeout, DNS failure). Surfaced only after the
// bounded retry budget is exhausted. Message carries the localized generic
// text for display; Err carries the last underlying failure.
type NetworkError struct {
	Err     error
	Message string
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

// Unwrap exposes the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is an HTTP 5xx response. It is never retried on status alone;
// Message carries the localized generic text for display.
type ServerError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server fault: status %d", e.StatusCode)
}
