package util

import (
	"context"
	"fmt"
	"time"

	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
)

// DoWithRetry runs action until it succeeds, up to maxRetries retries, sleeping
// sleepBetweenRetries in between. A FatalError stops the retries immediately.
func DoWithRetry(ctx context.Context, description string, maxRetries int, sleepBetweenRetries time.Duration, logger log.Logger, action func(ctx context.Context) error) error {
	for i := 0; i <= maxRetries; i++ {
		logger.Debug(description)

		err := action(ctx)
		if err == nil {
			return nil
		}

		var fatalErr FatalError
		if errors.As(err, &fatalErr) {
			return fatalErr.Underlying
		}

		if ctx.Err() != nil {
			return errors.New(ctx.Err())
		}

		logger.Warnf("%s returned an error: %s. Retry %d of %d. Sleeping for %s and will try again.", description, err, i, maxRetries, sleepBetweenRetries)

		select {
		case <-time.After(sleepBetweenRetries):
		case <-ctx.Done():
			return errors.New(ctx.Err())
		}
	}

	return MaxRetriesExceeded{Description: description, MaxRetries: maxRetries}
}

// MaxRetriesExceeded is returned when an action kept failing.
type MaxRetriesExceeded struct {
	Description string
	MaxRetries  int
}

func (err MaxRetriesExceeded) Error() string {
	return fmt.Sprintf("'%s' unsuccessful after %d retries", err.Description, err.MaxRetries)
}

// FatalError wraps an error that must not be retried.
type FatalError struct {
	Underlying error
}

func (err FatalError) Error() string {
	return err.Underlying.Error()
}

func (err FatalError) Unwrap() error {
	return err.Underlying
}
