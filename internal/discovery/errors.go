package discovery

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Provider when a looked up resource does not exist.
var ErrNotFound = errors.New("resource not found")

// ProviderError wraps a failed provider call.
type ProviderError struct {
	Err error
	Op  string
}

func (err ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", err.Op, err.Err)
}

func (err ProviderError) Unwrap() error {
	return err.Err
}

// BatchTagError is returned when a tag write batch fails. Batches before it have
// been applied and are not rolled back.
type BatchTagError struct {
	Err    error
	Batch  int
	Tagged int
	Total  int
}

func (err BatchTagError) Error() string {
	return fmt.Sprintf("tagging batch %d failed after %d of %d resources were tagged: %v", err.Batch, err.Tagged, err.Total, err.Err)
}

func (err BatchTagError) Unwrap() error {
	return err.Err
}

// FailedResourcesError is returned when the tagging API accepted a request but
// could not tag some of its resources.
type FailedResourcesError struct {
	Failures map[string]string
}

func (err FailedResourcesError) Error() string {
	return fmt.Sprintf("%d resources could not be tagged: %v", len(err.Failures), err.Failures)
}
