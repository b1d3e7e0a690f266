package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// MultiError collects several independent failures, for example the cleanup steps
// run when a workspace is torn down.
type MultiError struct {
	inner *multierror.Error
}

// Error implements the error interface.
func (errs *MultiError) Error() string {
	wrapped := UnwrapMultiErrors(errs)

	lines := make([]string, 0, len(wrapped))
	for _, err := range wrapped {
		lines = append(lines, indent(err.Error()))
	}

	header := "1 error occurred:"
	if len(wrapped) != 1 {
		header = fmt.Sprintf("%d errors occurred:", len(wrapped))
	}

	return header + "\n\n" + strings.Join(lines, "\n") + "\n"
}

// WrappedErrors returns the errors collected so far.
func (errs *MultiError) WrappedErrors() []error {
	if errs == nil || errs.inner == nil {
		return nil
	}

	return errs.inner.WrappedErrors()
}

func (errs *MultiError) Unwrap() []error {
	return errs.WrappedErrors()
}

// ErrorOrNil returns nil when nothing was collected.
func (errs *MultiError) ErrorOrNil() error {
	if errs == nil || errs.inner == nil || errs.inner.ErrorOrNil() == nil {
		return nil
	}

	return errs
}

// Append returns a MultiError holding the previous errors plus the non-nil appendErrs.
func (errs *MultiError) Append(appendErrs ...error) *MultiError {
	var inner *multierror.Error
	if errs != nil {
		inner = errs.inner
	}

	for _, err := range appendErrs {
		if err != nil {
			inner = multierror.Append(inner, err)
		}
	}

	return &MultiError{inner: inner}
}

func indent(str string) string {
	lines := strings.Split(strings.ReplaceAll(str, "\r\n", "\n"), "\n")

	for i := range lines {
		if i == 0 {
			lines[i] = "* " + lines[i]
		} else {
			lines[i] = "  " + lines[i]
		}
	}

	return strings.Join(lines, "\n")
}
