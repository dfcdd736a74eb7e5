// Package apperr defines the error kinds surfaced to API callers.  Services
// return *Error values for expected failures (missing rows, wrong role, bad
// input).  Anything else is treated as internal and masked by Normalize, so
// database or filesystem details never reach a client.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	Internal Kind = iota
	Unauthorized
	Forbidden
	NotFound
	BadRequest
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case BadRequest:
		return "bad_request"
	case Conflict:
		return "conflict"
	}
	return "internal"
}

// InternalMessage is the only message an Internal error exposes.
const InternalMessage = "unexpected error"

// Error carries a Kind, a caller-facing message and an optional cause.
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

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of kind k.
func New(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

// Wrap returns an error of kind k that keeps err as its cause.
func Wrap(k Kind, msg string, err error) *Error { return &Error{Kind: k, Message: msg, Err: err} }

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

func BadRequestf(format string, args ...any) *Error {
	return New(BadRequest, fmt.Sprintf(format, args...))
}

// Internalf wraps an unexpected failure.  The formatted text is kept for
// logs only.
func Internalf(err error, format string, args ...any) *Error {
	return Wrap(Internal, fmt.Sprintf(format, args...), err)
}

// KindOf reports the kind of err, Internal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Normalize converts err into the value that may be shown to a caller.
// Typed errors other than Internal pass through; everything else becomes
// Internal with InternalMessage and the original error as cause.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e
	}
	return &Error{Kind: Internal, Message: InternalMessage, Err: err}
}
