// Package errors wraps errors with stack traces and aggregates them, so that the
// deployer can print a short message to the user and the full trace at trace level.
package errors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// New returns an error carrying the call stack. A string or a format-less value is
// turned into an error first; an error that already has a stack is returned as is.
func New(val any) error {
	if val == nil {
		return nil
	}

	if err, ok := val.(error); ok && ContainsStackTrace(err) {
		return err
	}

	return goerrors.Wrap(val, 1)
}

// Errorf creates a new error with the stack trace attached.
func Errorf(format string, args ...any) error {
	return goerrors.Wrap(fmt.Errorf(format, args...), 1)
}

// WithPrefix wraps err with a stack trace and prepends the formatted message.
func WithPrefix(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return goerrors.WrapPrefix(err, fmt.Sprintf(format, args...), 1)
}

// Recover recovers from a panic and passes the cause, with a stack trace, to onPanic.
// Call it only from a defer statement.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, ok := rec.(error)
		if !ok {
			err = fmt.Errorf("%v", rec) //nolint:err113
		}

		onPanic(goerrors.Wrap(err, 1))
	}
}
