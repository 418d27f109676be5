// Package apperr defines the error kinds every service returns to its callers.
// Storage and collaborator failures are wrapped into one of these kinds before
// they leave a service, so handlers never see raw driver errors.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindState      Kind = "state"
	KindDependency Kind = "dependency"
)

// Error is a classified application error. Two errors are considered equal by
// errors.Is when their codes match, so a sentinel matches any detailed copy of it.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of e whose message carries extra context.
func (e *Error) WithDetail(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = e.Message + ": " + fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e that records cause as the underlying error.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// Validation reports malformed input. It is returned before any storage access.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "validation_failed", Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Dependency wraps a failure of storage or of an external collaborator.
func Dependency(op string, err error) *Error {
	return &Error{Kind: KindDependency, Code: "dependency_failed", Message: op, Err: err}
}

// KindOf reports the kind of err, or KindDependency for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependency
}

// CodeOf reports the machine-readable code of err.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "internal_error"
}

// HTTPStatus maps an error to the status code the API layer responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict, KindState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}
