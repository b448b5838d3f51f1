// Package apperr classifies operation failures so transport layers can
// map them to a status without inspecting message strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotAuthenticated   Kind = "not_authenticated"
	KindNotAuthorized      Kind = "not_authorized"
	KindNotFound           Kind = "not_found"
	KindInvariantViolation Kind = "invariant_violation"
	KindValidation         Kind = "validation"
	KindInternal           Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a classification to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotAuthenticated() *Error {
	return New(KindNotAuthenticated, "not authenticated")
}

func NotAuthorized(message string) *Error {
	return New(KindNotAuthorized, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func InvariantViolation(message string) *Error {
	return New(KindInvariantViolation, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the classification of err, or KindInternal for errors
// that carry none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
