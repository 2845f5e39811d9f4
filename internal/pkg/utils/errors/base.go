package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// StackTrace is a stack of program counters, the deepest call first.
type StackTrace []uintptr

type stackTracer interface {
	StackTrace() StackTrace
}

// withStack annotates an error with the stack trace of its origin.
type withStack struct {
	err   error
	trace StackTrace
}

// chain groups several errors into one value addressable by errors.Is/As.
type chain []error

func New(msg string) error {
	return &withStack{err: errors.New(msg), trace: callers()}
}

// Errorf formats a new error, the %w verb is supported.
func Errorf(format string, a ...any) error {
	return &withStack{err: fmt.Errorf(format, a...), trace: callers()}
}

// WithStack returns the error annotated with the stack trace of the caller.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(stackTracer); ok { // nolint: errorlint
		return err
	}
	return &withStack{err: err, trace: callers()}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func (e *withStack) Error() string {
	return e.err.Error()
}

func (e *withStack) Unwrap() error {
	return e.err
}

func (e *withStack) StackTrace() StackTrace {
	return e.trace
}

func (c chain) Error() string {
	if len(c) == 0 {
		return ""
	}
	return c[0].Error()
}

func (c chain) Unwrap() []error {
	return c
}

func callers() StackTrace {
	const depth = 16
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return StackTrace(pcs[0:n])
}
