// Package fault defines the contract violations raised by the belief engine.
//
// Every fault is fatal for the battle it was raised in: the engine never
// recovers from one internally. Callers match faults by code with errors.Is.
package fault

import (
	"errors"
	"fmt"
)

// Code is a machine-readable fault code.
type Code string

const (
	// CodeEmptyCandidates means a narrowing would leave a tracker with no candidates.
	CodeEmptyCandidates Code = "EMPTY_CANDIDATES"
	// CodeAmbiguousAccept means two competing parsers accepted the same event.
	CodeAmbiguousAccept Code = "AMBIGUOUS_ACCEPT"
	// CodeUnexpectedEvent means no hypothesis or default handler can explain an event.
	CodeUnexpectedEvent Code = "UNEXPECTED_EVENT"
	// CodeUnknownData means a static rule lookup referenced an unknown name.
	CodeUnknownData Code = "UNKNOWN_DATA"
	// CodeCallDepthExceeded means a move-calls-move chain exceeded its bound.
	CodeCallDepthExceeded Code = "CALL_DEPTH_EXCEEDED"
	// CodeHitLimitExceeded means a multi-hit move produced more hits than allowed.
	CodeHitLimitExceeded Code = "HIT_LIMIT_EXCEEDED"
	// CodeMissingEvent means an event that had to follow never arrived.
	CodeMissingEvent Code = "MISSING_EVENT"
	// CodeInvalidState means an event referenced state the model does not hold.
	CodeInvalidState Code = "INVALID_STATE"
)

// Sentinel values for errors.Is matching.
var (
	ErrEmptyCandidates   = &Error{Code: CodeEmptyCandidates}
	ErrAmbiguousAccept   = &Error{Code: CodeAmbiguousAccept}
	ErrUnexpectedEvent   = &Error{Code: CodeUnexpectedEvent}
	ErrUnknownData       = &Error{Code: CodeUnknownData}
	ErrCallDepthExceeded = &Error{Code: CodeCallDepthExceeded}
	ErrHitLimitExceeded  = &Error{Code: CodeHitLimitExceeded}
	ErrMissingEvent      = &Error{Code: CodeMissingEvent}
	ErrInvalidState      = &Error{Code: CodeInvalidState}
)

// Error is a fatal contract violation.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a fault with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates a fault with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a fault with a formatted message around a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf returns the code of the first fault in err's chain, or "" if none.
func CodeOf(err error) Code {
	var f *Error
	if errors.As(err, &f) {
		return f.Code
	}
	return ""
}
