// Package fault defines the two error classes used throughout the circuit core.
//
// A LogicError reports a violated caller contract (calling RemoveFromCircuit on
// something that was never added, registering the same pin twice, ...). It
// never happens in a correct integration and is not meant to be shown to a user.
//
// A RuntimeError carries a human-readable message and is expected to be caught
// by the calling layer: an empty component name, removing a component that is
// still placed, a malformed UUID reference in a circuit file.
package fault

import (
	"errors"
	"fmt"
)

// LogicError reports a broken caller contract.
type LogicError struct {
	Op     string
	Detail string
}

func (e *LogicError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("logic error in %s", e.Op)
	}
	return fmt.Sprintf("logic error in %s: %s", e.Op, e.Detail)
}

// RuntimeError is a user-facing failure.
type RuntimeError struct {
	Msg string
	Err error
}

func (e *RuntimeError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Logic returns a LogicError for the named operation.
func Logic(op string) error {
	return &LogicError{Op: op}
}

// Logicf returns a LogicError with a formatted detail message.
func Logicf(op, format string, args ...any) error {
	return &LogicError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Runtimef returns a RuntimeError with a formatted message.
func Runtimef(format string, args ...any) error {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// WrapRuntime returns a RuntimeError with a formatted message and a cause.
func WrapRuntime(err error, format string, args ...any) error {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsLogic reports whether err (or anything it wraps) is a LogicError.
func IsLogic(err error) bool {
	var le *LogicError
	return errors.As(err, &le)
}

// IsRuntime reports whether err (or anything it wraps) is a RuntimeError.
func IsRuntime(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}
