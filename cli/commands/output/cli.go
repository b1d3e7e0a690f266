// Package output prints Terraform outputs of an environment.
package output

import (
	"context"

	"github.com/seek-and-deploy/deployer/cli/commands/common"
	"github.com/seek-and-deploy/deployer/internal/session"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/urfave/cli/v2"
)

const CommandName = "output"

func NewCommand(opts *options.DeployerOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Run terraform output in the environment's Terraform root.",
		ArgsUsage: "[name]",
		Action: func(ctx *cli.Context) error {
			args := ctx.Args().Slice()

			return common.WithSession(ctx.Context, opts, true, func(ctx context.Context, sess *session.Session) error {
				return sess.Orchestrator.Output(ctx, args...)
			})
		},
	}
}
