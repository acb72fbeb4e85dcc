// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrTimeout indicates an outbound call exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrUnknownIntent indicates the NLU sent an intent this service does not handle.
	ErrUnknownIntent = errors.New("unknown intent")

	// ErrNoCoordinates indicates a location turn carried no usable lat/lng pair.
	ErrNoCoordinates = errors.New("no coordinates")
)

// UpstreamError represents a failed call to an external HTTP collaborator
// (reverse geocoder, image host).
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status=%d): %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(service string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{
		Service:    service,
		StatusCode: statusCode,
		Err:        err,
	}
}
