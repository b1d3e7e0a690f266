package util

import (
	"context"
	"time"

	"github.com/gofrs/flock"
	"github.com/seek-and-deploy/deployer/internal/errors"
)

const lockRetryDelay = 500 * time.Millisecond

// Lockfile is an advisory file lock held while Terraform runs in a directory.
type Lockfile struct {
	*flock.Flock
}

func NewLockfile(filename string) *Lockfile {
	return &Lockfile{flock.New(filename)}
}

// Lock blocks until the lock is acquired or ctx is done.
func (lockfile *Lockfile) Lock(ctx context.Context) error {
	locked, err := lockfile.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return errors.Errorf("unable to lock %s: %w", lockfile.Path(), err)
	}

	if !locked {
		return errors.Errorf("unable to lock %s, another deployer process is using it", lockfile.Path())
	}

	return nil
}
