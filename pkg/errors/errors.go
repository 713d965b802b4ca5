package errors

import (
	"errors"
	"net/http"
)

// Error taxonomy for the service. Handlers map these onto HTTP statuses; the
// service layer never touches status codes directly.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
	ErrAuth       = errors.New("authentication failed")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("resource conflict")
	ErrInternal   = errors.New("internal server error")
)

// AppError is a structured application error carrying the HTTP status a
// boundary handler should respond with and a caller-safe message.
type AppError struct {
	Err        error
	StatusCode int
	Message    string
}

// Error returns the caller-safe message, falling back to the sentinel
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying sentinel error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError wrapping the given sentinel
func New(err error, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewValidationError creates a validation error (400)
func NewValidationError(message string) *AppError {
	return New(ErrValidation, message, http.StatusBadRequest)
}

// NewNotFoundError creates a not found error (404)
func NewNotFoundError(message string) *AppError {
	return New(ErrNotFound, message, http.StatusNotFound)
}

// NewAuthError creates an authentication error (401)
func NewAuthError(message string) *AppError {
	return New(ErrAuth, message, http.StatusUnauthorized)
}

// NewForbiddenError creates a forbidden error (403)
func NewForbiddenError(message string) *AppError {
	return New(ErrForbidden, message, http.StatusForbidden)
}

// NewConflictError creates a conflict error (409)
func NewConflictError(message string) *AppError {
	return New(ErrConflict, message, http.StatusConflict)
}

// NewInternalError creates an internal server error (500). The message is
// what the caller sees; the real cause belongs in the server log.
func NewInternalError(message string) *AppError {
	return New(ErrInternal, message, http.StatusInternalServerError)
}

// StatusCode returns the HTTP status for err, defaulting to 500 for anything
// that is not an AppError.
func StatusCode(err error) int {
	var appErr *AppError

	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	return http.StatusInternalServerError
}

// IsClientError reports whether err should be surfaced to the caller as-is
// rather than replaced with a generic internal error message.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAuth) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrConflict)
}
