// Package errors provides structured errors that carry a category, a
// client-safe message and log context, and map onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of an error, used for status mapping, logging and metrics.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates a missing resource (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeUnavailable indicates a dependency such as the store cannot serve requests (HTTP 503)
	TypeUnavailable ErrorType = "unavailable"
	// TypeInternal indicates a server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error is a structured error with type, message and context.
// Message is shown to clients; Cause is only logged.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    t,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// ValidationError creates a validation error (HTTP 400). The cause, if any,
// is usually a domain sentinel such as domain.ErrEmptyStory.
func ValidationError(message string, cause error) *Error {
	return newError(TypeValidation, message, cause)
}

// NotFoundError creates a not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return newError(TypeNotFound, message, nil)
}

// UnavailableError creates a dependency-unavailable error (HTTP 503).
func UnavailableError(message string, cause error) *Error {
	return newError(TypeUnavailable, message, cause)
}

// InternalError creates an internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

// WithField adds a context field to the error (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse is the JSON body sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse. Context is only exposed
// for validation errors; other context may contain internals.
func (e *Error) ToResponse() ErrorResponse {
	resp := ErrorResponse{
		Error: e.Message,
		Type:  e.Type,
	}
	if e.Type == TypeValidation && len(e.Context) > 0 {
		resp.Context = e.Context
	}
	return resp
}

// AsStructuredError converts any error into a structured Error.
// An *Error anywhere in the chain is returned unchanged; anything else
// becomes an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
