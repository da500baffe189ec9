// Package apperr is the error taxonomy for the API. Service-layer
// failures are wrapped as an Error carrying the HTTP status and a
// machine-readable code; handlers map anything else to a 500.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Validation: missing/invalid fields, duplicate email, bad identifiers.
func Validation(msg string) *Error {
	return &Error{Code: "VALIDATION_ERROR", Message: msg, Status: http.StatusBadRequest}
}

// Unauthenticated: missing, malformed, or expired token.
func Unauthenticated(msg string) *Error {
	return &Error{Code: "AUTHENTICATION_ERROR", Message: msg, Status: http.StatusUnauthorized}
}

// Forbidden: authenticated but lacking the role or ownership required.
func Forbidden(msg string) *Error {
	return &Error{Code: "AUTHORIZATION_ERROR", Message: msg, Status: http.StatusForbidden}
}

func NotFound(resource string) *Error {
	return &Error{Code: "NOT_FOUND", Message: resource + " not found", Status: http.StatusNotFound}
}

// Conflict: the resource is in a state that rejects the transition,
// e.g. borrowing an already-borrowed book.
func Conflict(msg string) *Error {
	return &Error{Code: "CONFLICT", Message: msg, Status: http.StatusConflict}
}

// Internal wraps an unexpected failure. The cause stays server-side.
func Internal(cause error) *Error {
	return &Error{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Cause:   cause,
	}
}

// As extracts the *Error from err's chain, or returns nil.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
