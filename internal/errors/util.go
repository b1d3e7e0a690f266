package errors

import (
	"context"
	"errors"
	"strings"
)

type stackError interface {
	ErrorStack() string
}

// ErrorStack returns the stack traces found in err and every error it wraps.
func ErrorStack(err error) string {
	var stacks []string

	for _, err := range UnwrapMultiErrors(err) {
		for ; err != nil; err = errors.Unwrap(err) {
			if withStack, ok := err.(stackError); ok {
				stacks = append(stacks, withStack.ErrorStack())
			}
		}
	}

	return strings.Join(stacks, "\n")
}

// ContainsStackTrace reports whether err already carries a stack trace.
func ContainsStackTrace(err error) bool {
	for _, err := range UnwrapMultiErrors(err) {
		for ; err != nil; err = errors.Unwrap(err) {
			if _, ok := err.(stackError); ok {
				return true
			}
		}
	}

	return false
}

// IsContextCanceled returns true if the error was caused by a canceled context,
// which happens when the user interrupts the deployer and is not really an error.
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// UnwrapMultiErrors flattens nested multi-errors into a slice.
func UnwrapMultiErrors(err error) []error {
	if err == nil {
		return nil
	}

	var (
		queue = []error{err}
		flat  []error
	)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if joined := findJoined(current); joined != nil {
			queue = append(queue, joined.Unwrap()...)
			continue
		}

		flat = append(flat, current)
	}

	return flat
}

func findJoined(err error) interface{ Unwrap() []error } {
	for ; err != nil; err = errors.Unwrap(err) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			return joined
		}
	}

	return nil
}
