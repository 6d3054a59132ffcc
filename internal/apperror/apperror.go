package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrBadRequest           = errors.New("bad request")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
)

// Error carries a caller facing message on top of one of the kinds above.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

var defaultMessages = map[error]string{
	ErrBadRequest:           "Bad request",
	ErrAuthenticationFailed: "Authentication failed",
	ErrPermissionDenied:     "Permission denied",
	ErrNotFound:             "Not found",
	ErrConflict:             "Conflict",
}

// New wraps kind with msg. An empty msg takes the default text of the kind.
func New(kind error, msg string) error {
	if msg == "" {
		msg = defaultMessage(kind)
	}
	return &Error{kind: kind, msg: msg}
}

func defaultMessage(kind error) string {
	if m, ok := defaultMessages[kind]; ok {
		return m
	}
	return kind.Error()
}

func BadRequest(msg string) error { return New(ErrBadRequest, msg) }

func NotFound(msg string) error { return New(ErrNotFound, msg) }

func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show to a client. Errors outside the
// taxonomy never leak their details.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	for _, kind := range []error{ErrBadRequest, ErrAuthenticationFailed, ErrPermissionDenied, ErrNotFound, ErrConflict} {
		if errors.Is(err, kind) {
			return defaultMessage(kind)
		}
	}
	return "internal error"
}
