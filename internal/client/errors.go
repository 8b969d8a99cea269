// ABOUTME: Error types returned by the API client
// ABOUTME: Separates transport failures from backend rejections and classifies status codes

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// TransportError means the request never got an HTTP response
type TransportError struct {
	BaseURL string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case errors.Is(e.Err, context.Canceled):
		return "request canceled"
	case errors.Is(e.Err, context.DeadlineExceeded):
		return "request timed out"
	}
	return fmt.Sprintf("cannot connect to backend at %s: %v", e.BaseURL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports a 401 rejection
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports a 403 rejection
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsValidation reports any other 4xx rejection
func IsValidation(err error) bool {
	code := statusOf(err)
	return code >= 400 && code < 500 && code != http.StatusUnauthorized && code != http.StatusForbidden
}

// IsServerError reports a 5xx response
func IsServerError(err error) bool {
	return statusOf(err) >= 500
}

// IsTransport reports a network-level failure
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// Message returns the user-facing message of err, falling back to fallback
// when err carries nothing better than a status code.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if fallback != "" {
			return fallback
		}
	}
	return err.Error()
}
