package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError carries the upstream status code and the backend-supplied
// message (or a generic fallback when the payload had none)
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("upstream error (HTTP %d): %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an upstream 404. Lookup misses are a
// valid non-error state for several callers (persisted cart, product
// resolution) and must be distinguishable from real failures.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is an upstream 401
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Message returns the backend-supplied message from err when it is an
// APIError, else the supplied fallback. Services use this to present a
// human-readable message per operation.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
