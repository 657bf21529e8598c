package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a domain failure
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a failure that should be described to the caller.
// Anything that is not an *Error is treated as an internal fault.
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Validation reports a malformed or rejected payload
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Status: http.StatusBadRequest}
}

// Unauthenticated reports a denied decision for an anonymous actor
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg, Status: http.StatusUnauthorized}
}

// Forbidden reports a denied decision for an authenticated actor
func Forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg, Status: http.StatusForbidden}
}

// Conflict reports an action attempted from the wrong state
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg, Status: http.StatusConflict}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Status: http.StatusNotFound}
}

// KindOf returns the kind of err, or KindInternal if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
