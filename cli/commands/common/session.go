// Package common holds helpers shared by the deployer commands.
package common

import (
	"context"

	"github.com/seek-and-deploy/deployer/internal/session"
	"github.com/seek-and-deploy/deployer/options"
)

// WithSession opens a session, prepares the Terraform workspace when prepare is
// set, and runs fn. The session is always closed; a close failure is returned
// only when fn succeeded.
func WithSession(ctx context.Context, opts *options.DeployerOptions, prepare bool, fn func(ctx context.Context, sess *session.Session) error) (err error) {
	sess, err := session.Open(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := sess.Close()
		if closeErr == nil {
			return
		}

		if err == nil {
			err = closeErr
			return
		}

		opts.Logger.Warnf("Failed to clean up the work dir: %v", closeErr)
	}()

	if prepare {
		if err := sess.Prepare(ctx); err != nil {
			return err
		}
	}

	return fn(ctx, sess)
}
