package apperr

import (
	"errors"
)

// Standard error codes used across the application.
const (
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeInvalidOperation = "INVALID_OPERATION"
	CodeNotFound         = "NOT_FOUND"
	CodeForbidden        = "FORBIDDEN"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Code    string
	Message string
	Fields  []FieldError
	// Origin is the underlying cause, kept for server-side logs
	// and never serialized to clients.
	Origin error
}

func (e *Error) Error() string {
	if e.Origin != nil {
		return e.Message + ": " + e.Origin.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Origin
}

func InvalidArgument(message string, fields ...FieldError) *Error {
	return &Error{Code: CodeInvalidArgument, Message: message, Fields: fields}
}

func InvalidOperation(message string) *Error {
	return &Error{Code: CodeInvalidOperation, Message: message}
}

func NotFound(what string) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found"}
}

func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: message}
}

func Conflict(message string, origin error) *Error {
	return &Error{Code: CodeConflict, Message: message, Origin: origin}
}

func Internal(message string, origin error) *Error {
	return &Error{Code: CodeInternal, Message: message, Origin: origin}
}

// CodeOf extracts the application error code from err, or
// CodeInternal when err carries no *Error in its chain.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given application code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
