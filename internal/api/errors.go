package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/campusdeals/api/internal/apperr"
)

type ApiError struct {
	StatusCode int                 `json:"status_code"`
	Message    string              `json:"message"`
	Fields     []apperr.FieldError `json:"fields,omitempty"`
	Err        error               `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func lower(s string) string {
	return strings.ToLower(s)
}

func NewBadRequestError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusBadRequest,
		Message:    lower(http.StatusText(http.StatusBadRequest)),
	}
}

func NewNotFoundError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusNotFound,
		Message:    lower(http.StatusText(http.StatusNotFound)),
	}
}

func NewInternalServerError(err error) *ApiError {
	return &ApiError{
		StatusCode: http.StatusInternalServerError,
		Message:    lower(http.StatusText(http.StatusInternalServerError)),
		Err:        err,
	}
}

func NewUnauthorizedError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusUnauthorized,
		Message:    lower(http.StatusText(http.StatusUnauthorized)),
	}
}

func NewForbiddenError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusForbidden,
		Message:    lower(http.StatusText(http.StatusForbidden)),
	}
}

func NewConflictError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusConflict,
		Message:    lower(http.StatusText(http.StatusConflict)),
	}
}

func NewMethodNotAllowedError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    lower(http.StatusText(http.StatusMethodNotAllowed)),
	}
}

// statusForCode maps application error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case apperr.CodeInvalidArgument, apperr.CodeInvalidOperation:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperr.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fromAppError translates a typed application error into its HTTP
// shape. Internal causes never reach the response body.
func fromAppError(err error) *ApiError {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return NewInternalServerError(err)
	}

	status := statusForCode(appErr.Code)
	if status == http.StatusInternalServerError {
		return NewInternalServerError(err)
	}

	return &ApiError{
		StatusCode: status,
		Message:    appErr.Message,
		Fields:     appErr.Fields,
		Err:        appErr.Origin,
	}
}
