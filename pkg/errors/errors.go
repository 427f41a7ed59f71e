// Package errors augments the standard errors package
// with a Wrap() method to nest causes without resorting
// to fmt.Errorf("%w", err).
//
// Sentinel errors built with New remain comparable with
// the standard errors.Is after wrapping.
package errors

import (
	stderr "errors"
)

var _ error = New("")

// New builds an Error from a message
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Wrap builds an Error from a message, nesting the given cause
func Wrap(err error, msg string) *Error {
	return &Error{msg: msg, err: err}
}

// Error augments the standard error interface with a Wrap method.
//
// Unlike github.com/pkg/errors, errors wrap errors, not text.
type Error struct {
	msg string
	err error
}

// Error message
func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap a cause under this error, returning a new error so that
// package-level sentinels are never mutated
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err}
}

// Is reports whether this error or its direct cause matches target
func (e *Error) Is(target error) bool {
	if e == target {
		return true
	}
	if t, ok := target.(*Error); ok {
		return e.msg == t.msg
	}
	return e.err == target
}

// As finds the first error in err's chain that matches target
// (a shortcut to the standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to the standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
