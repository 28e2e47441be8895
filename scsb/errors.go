package scsb

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidPath indicates a missing request path
	ErrInvalidPath = errors.New("SCSB API path missing or invalid")
	// ErrEmptyPayload indicates a nil or empty request body
	ErrEmptyPayload = errors.New("SCSB API query is empty; could not initialize POST request")
	// ErrNotConfigured indicates the client has no base URL or API key
	ErrNotConfigured = errors.New("SCSB client must be configured with a url and apiKey")
	// ErrUpstream indicates a non-200 response or a transport failure
	ErrUpstream = errors.New("error hitting SCSB API")
	// ErrDecode indicates a 200 response whose body is not valid JSON
	ErrDecode = errors.New("invalid JSON in SCSB API response")
)

// APIError represents a failed round trip to the SCSB API. StatusCode is 0
// when no response was received.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
	Body       string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("SCSB API error: %s %s: %v", e.Message, e.Path, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("SCSB API error: status %d requesting %s: %s", e.StatusCode, e.Path, e.Body)
	}
	return fmt.Sprintf("SCSB API error: status %d requesting %s: %s", e.StatusCode, e.Path, e.Message)
}

// Unwrap lets errors.Is match both ErrUpstream and the transport cause.
func (e *APIError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstream, e.Err}
	}
	return []error{ErrUpstream}
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsTransport reports whether the request failed before a response arrived.
func (e *APIError) IsTransport() bool {
	return e.StatusCode == 0
}

// DecodeError is returned when a 200 response carries malformed JSON.
type DecodeError struct {
	Path string
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse SCSB API response from %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an
// *APIError or no response was received.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
