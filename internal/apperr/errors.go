// Package apperr defines the errors handlers return to clients. Each error
// carries the HTTP status it maps to and a stable business code.
package apperr

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError is an error that knows how it should be rendered to a client.
type AppError interface {
	error
	HTTPCode() int
	ErrorCode() string
	Message() string
	Details() string
}

type baseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

func New(httpCode int, errorCode, message string) AppError {
	return &baseError{httpCode: httpCode, errorCode: errorCode, message: message}
}

func (e *baseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}
	return e.message
}

func (e *baseError) HTTPCode() int     { return e.httpCode }
func (e *baseError) ErrorCode() string { return e.errorCode }
func (e *baseError) Message() string   { return e.message }
func (e *baseError) Details() string   { return e.details }

// Is matches on the business code so that an error with details still
// matches its predefined sentinel.
func (e *baseError) Is(target error) bool {
	t, ok := target.(*baseError)
	return ok && t.errorCode == e.errorCode
}

// WithDetails returns a copy of err carrying details. Errors that are not
// AppErrors are returned unchanged.
func WithDetails(err error, details string) error {
	var app *baseError
	if !errors.As(err, &app) {
		return err
	}
	return &baseError{
		httpCode:  app.httpCode,
		errorCode: app.errorCode,
		message:   app.message,
		details:   details,
	}
}

var (
	ErrBadRequest   = New(http.StatusBadRequest, "BAD_REQUEST", "Bad request")
	ErrInvalidID    = New(http.StatusBadRequest, "INVALID_ID", "Invalid identifier")
	ErrUnauthorized = New(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized access")
	ErrForbidden    = New(http.StatusForbidden, "FORBIDDEN", "Forbidden access")
	ErrNotFound     = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrConflict     = New(http.StatusConflict, "CONFLICT", "Resource already exists")
	ErrInternal     = New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	ErrUnavailable  = New(http.StatusServiceUnavailable, "UNAVAILABLE", "Service unavailable")
)
