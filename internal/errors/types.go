package errors

import (
	"errors"
	"net/http"
)

// Kind sentinels classify failures for HTTP mapping via errors.Is.
var (
	// ErrBadRequest marks malformed, oversized, or wrongly typed client input.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized marks a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks an authenticated caller acting on a resource it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks a missing video or asset.
	ErrNotFound = errors.New("not found")
)

// Error pairs a kind sentinel with a short user-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	unwrapped := make([]error, 0, 2)
	if e.Kind != nil {
		unwrapped = append(unwrapped, e.Kind)
	}
	if e.Err != nil {
		unwrapped = append(unwrapped, e.Err)
	}
	return unwrapped
}

// BadRequest builds an ErrBadRequest failure.
func BadRequest(msg string, cause ...error) error {
	return newError(ErrBadRequest, msg, cause)
}

// Unauthorized builds an ErrUnauthorized failure.
func Unauthorized(msg string, cause ...error) error {
	return newError(ErrUnauthorized, msg, cause)
}

// Forbidden builds an ErrForbidden failure.
func Forbidden(msg string, cause ...error) error {
	return newError(ErrForbidden, msg, cause)
}

// NotFound builds an ErrNotFound failure.
func NotFound(msg string, cause ...error) error {
	return newError(ErrNotFound, msg, cause)
}

func newError(kind error, msg string, cause []error) error {
	e := &Error{Kind: kind, Message: msg}
	if len(cause) > 0 {
		e.Err = errors.Join(cause...)
	}
	return e
}

// Message returns the user-facing message of a classified error, or "" when
// err carries no *Error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// HTTPStatus maps a classified error to its status code. Unclassified errors
// are internal failures.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err was classified as a caller mistake.
func IsClientError(err error) bool {
	status := HTTPStatus(err)
	return status >= 400 && status < 500
}
