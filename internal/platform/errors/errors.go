// Package errors provides structured error handling with context propagation
// and HTTP status code mapping.
package errors

import (
	"errors"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeConflict indicates resource conflict (HTTP 409)
	TypeConflict ErrorType = "conflict"
	// TypeOperation indicates a domain rule rejected the operation, such as
	// insufficient energy, a duplicate vote or a closed poll (HTTP 400)
	TypeOperation ErrorType = "operation"
	// TypeRateLimited indicates the caller exceeded a rate window (HTTP 429)
	TypeRateLimited ErrorType = "rate_limited"
	// TypeUnauthenticated indicates a missing or invalid session (HTTP 401)
	TypeUnauthenticated ErrorType = "unauthenticated"
	// TypeForbidden indicates an authenticated caller lacking a role (HTTP 403)
	TypeForbidden ErrorType = "forbidden"
	// TypeInternal indicates server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
	// TypeExternal indicates external service error (HTTP 502)
	TypeExternal ErrorType = "external"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return string(e.Type) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Type) + ": " + e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation, TypeOperation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeRateLimited:
		return http.StatusTooManyRequests
	case TypeUnauthenticated:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message, Context: make(map[string]any)}
}

func ValidationError(message string) *Error      { return newError(TypeValidation, message) }
func NotFoundError(message string) *Error        { return newError(TypeNotFound, message) }
func ConflictError(message string) *Error        { return newError(TypeConflict, message) }
func OperationError(message string) *Error       { return newError(TypeOperation, message) }
func RateLimitedError(message string) *Error     { return newError(TypeRateLimited, message) }
func UnauthenticatedError(message string) *Error { return newError(TypeUnauthenticated, message) }
func ForbiddenError(message string) *Error       { return newError(TypeForbidden, message) }

func InternalError(message string, cause error) *Error {
	e := newError(TypeInternal, message)
	e.Cause = cause
	return e
}

func ExternalError(message string, cause error) *Error {
	e := newError(TypeExternal, message)
	e.Cause = cause
	return e
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
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
