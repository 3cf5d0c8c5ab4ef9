// Package apperror classifies domain errors so HTTP handlers can map them
// to status codes in one place.
package apperror

import "errors"

// Kind is the category of a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
	KindUnauthorized
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindForbidden:
		return "FORBIDDEN"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindUpstream:
		return "UPSTREAM_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a classified error with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func NotFound(msg string) *Error     { return newError(KindNotFound, msg) }
func Validation(msg string) *Error   { return newError(KindValidation, msg) }
func Conflict(msg string) *Error     { return newError(KindConflict, msg) }
func Forbidden(msg string) *Error    { return newError(KindForbidden, msg) }
func Unauthorized(msg string) *Error { return newError(KindUnauthorized, msg) }
func Upstream(msg string) *Error     { return newError(KindUpstream, msg) }

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of a classified error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
