// Package destroy tears an environment down.
package destroy

import (
	"context"

	"github.com/seek-and-deploy/deployer/cli/commands/common"
	"github.com/seek-and-deploy/deployer/internal/session"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/urfave/cli/v2"
)

const CommandName = "destroy"

func NewCommand(opts *options.DeployerOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Destroy the environment described by the config and remove its S3 data and state.",
		Action: func(ctx *cli.Context) error {
			return common.WithSession(ctx.Context, opts, true, Run)
		},
	}
}

func Run(ctx context.Context, sess *session.Session) error {
	return sess.Orchestrator.Destroy(ctx, sess.Target(), sess.Cleanup())
}
