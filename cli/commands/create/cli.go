// Package create provisions an environment.
package create

import (
	"context"

	"github.com/seek-and-deploy/deployer/cli/commands/common"
	"github.com/seek-and-deploy/deployer/internal/session"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/urfave/cli/v2"
)

const CommandName = "create"

func NewCommand(opts *options.DeployerOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Create the environment described by the config and tag its resources as running.",
		Action: func(ctx *cli.Context) error {
			return common.WithSession(ctx.Context, opts, true, Run)
		},
	}
}

func Run(ctx context.Context, sess *session.Session) error {
	return sess.Orchestrator.Create(ctx, sess.Target())
}
