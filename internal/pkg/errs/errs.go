// Package errs holds the error types shared by the legacy client, the sync
// service and the repositories. Each type knows the HTTP status it maps to so
// the web layer can render it without importing domain packages.
package errs

import (
	"fmt"
	"net/http"
)

// ConfigurationError reports a required setting that is missing.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not provided", e.Setting)
}

func (e *ConfigurationError) HTTPStatus() int { return http.StatusInternalServerError }

// UpstreamError is a non-success response from the legacy service.
type UpstreamError struct {
	URL        string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("legacy service responded with status %d", e.StatusCode)
}

// HTTPStatus surfaces an upstream 5xx as is. Anything else is a 502: an
// upstream 401 or 404 is the legacy service's problem, not the caller's.
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode >= 500 && e.StatusCode <= 599 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}

// UpstreamTimeoutError means a legacy call did not finish in time.
type UpstreamTimeoutError struct {
	URL string
	Err error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("legacy service timed out: %v", e.Err)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Err }

func (e *UpstreamTimeoutError) HTTPStatus() int { return http.StatusGatewayTimeout }

// StorageError wraps a connection, query or transaction failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) HTTPStatus() int { return http.StatusInternalServerError }

// InvalidArgumentError rejects a malformed caller-supplied value.
type InvalidArgumentError struct {
	Name  string
	Value string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %q: must be a non-negative integer", e.Name, e.Value)
}

func (e *InvalidArgumentError) HTTPStatus() int { return http.StatusBadRequest }

// NotFoundError is returned when no employee matches the id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("User %d not found!", e.ID)
}

func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// ConflictError is returned when a synchronization is already running.
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already in progress", e.Resource)
}

func (e *ConflictError) HTTPStatus() int { return http.StatusConflict }
