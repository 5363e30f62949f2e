package tst

import (
	"errors"
	"fmt"
)

// Error is returned when a context cannot serve a match, a call or an index.
//
// All three kinds are fatal to the operation that raised them: nothing is
// retried and no callable is invoked with a partial argument list.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Target is the requested type name (MATCH_NOT_FOUND only).
	Target string

	// Callable is the type name of the callable being bound, if any.
	Callable string

	// Param is the parameter position being bound, or -1.
	Param int

	// Context describes the element types of the context, e.g. "(int, string)".
	Context string
}

// ErrorCode categorizes toolkit errors.
type ErrorCode string

const (
	// ErrCodeMatchNotFound indicates no context element is compatible with a requested type.
	ErrCodeMatchNotFound ErrorCode = "MATCH_NOT_FOUND"

	// ErrCodeUnsupportedCallable indicates a callable whose shape cannot be classified.
	ErrCodeUnsupportedCallable ErrorCode = "UNSUPPORTED_CALLABLE"

	// ErrCodeIndexOutOfRange indicates a positional access beyond the context length.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Callable != "" && e.Param >= 0 {
		msg += fmt.Sprintf(" (callable=%s, param=%d)", e.Callable, e.Param)
	} else if e.Callable != "" {
		msg += fmt.Sprintf(" (callable=%s)", e.Callable)
	}
	if e.Context != "" {
		msg += " in context " + e.Context
	}
	return msg
}

// Is reports whether target is a *Error with the same code.
// This lets callers compare against the ErrMatchNotFound family with errors.Is.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Code == e.Code && other.Message == ""
}

// Sentinels for errors.Is comparisons. Only the code is compared.
var (
	ErrMatchNotFound       = &Error{Code: ErrCodeMatchNotFound, Param: -1}
	ErrUnsupportedCallable = &Error{Code: ErrCodeUnsupportedCallable, Param: -1}
	ErrIndexOutOfRange     = &Error{Code: ErrCodeIndexOutOfRange, Param: -1}
)

// CodeOf returns the toolkit error code carried by err, or "" when err is
// not (and does not wrap) a *Error.
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsMatchNotFound returns true if the error is a match failure.
// Uses errors.As to handle wrapped errors.
func IsMatchNotFound(err error) bool {
	return CodeOf(err) == ErrCodeMatchNotFound
}

// IsUnsupportedCallable returns true if the error is an unclassifiable callable.
func IsUnsupportedCallable(err error) bool {
	return CodeOf(err) == ErrCodeUnsupportedCallable
}

// IsIndexOutOfRange returns true if the error is a positional access failure.
func IsIndexOutOfRange(err error) bool {
	return CodeOf(err) == ErrCodeIndexOutOfRange
}

func newMatchError(target string, c *Context) *Error {
	return &Error{
		Code:    ErrCodeMatchNotFound,
		Message: fmt.Sprintf("no context element is compatible with %s", target),
		Target:  target,
		Param:   -1,
		Context: c.String(),
	}
}

func newUnsupportedError(callable, format string, args ...any) *Error {
	return &Error{
		Code:     ErrCodeUnsupportedCallable,
		Message:  fmt.Sprintf(format, args...),
		Callable: callable,
		Param:    -1,
	}
}

func newIndexError(index int, c *Context) *Error {
	return &Error{
		Code:    ErrCodeIndexOutOfRange,
		Message: fmt.Sprintf("index %d is out of range for %d element(s)", index, c.Len()),
		Param:   -1,
		Context: c.String(),
	}
}
