// Package nextversion prints the first free version of the configured environment name.
package nextversion

import (
	"context"
	"fmt"

	"github.com/seek-and-deploy/deployer/cli/commands/common"
	"github.com/seek-and-deploy/deployer/internal/session"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/urfave/cli/v2"
)

const CommandName = "next-version"

func NewCommand(opts *options.DeployerOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Print the first version letter not used by a running environment of the configured name.",
		Action: func(ctx *cli.Context) error {
			return common.WithSession(ctx.Context, opts, false, func(ctx context.Context, sess *session.Session) error {
				target := sess.Target()

				version, err := sess.Orchestrator.AllocateAndReport(ctx, target.Name, target.Discriminator)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(opts.Writer, version)

				return err
			})
		},
	}
}
