// Package apperr defines the application error taxonomy. Every error a
// service returns carries a machine-discriminable kind plus a
// human-readable message; the HTTP layer maps kinds to status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind discriminates error classes across the service layer.
type Kind int

const (
	// KindValidation covers bad input: missing required field, empty item
	// list, non-positive qty/price, missing rejection reason.
	KindValidation Kind = iota + 1

	// KindAuthorization covers a wrong role attempting a restricted
	// operation, or an expired/missing credential.
	KindAuthorization

	// KindConflict covers optimistic-concurrency mismatches on status
	// transitions and edits of non-pending reimbursements.
	KindConflict

	// KindNotFound covers operations targeting a nonexistent entity.
	KindNotFound

	// KindUpstream covers persistence or file-store failures. Surfaced as
	// a retryable failure the user re-triggers explicitly.
	KindUpstream
)

// String returns the kind's wire label.
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
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error is a kinded application error, optionally wrapping a cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a kinded error with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a kinded error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a kinded error wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or 0 if err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
