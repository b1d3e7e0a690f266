// Package versions prints the versions in use for the configured environment name.
package versions

import (
	"context"
	"fmt"
	"io"

	"github.com/seek-and-deploy/deployer/cli/commands/common"
	"github.com/seek-and-deploy/deployer/internal/discovery"
	"github.com/seek-and-deploy/deployer/internal/session"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/urfave/cli/v2"
)

const CommandName = "versions"

func NewCommand(opts *options.DeployerOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Print the versions of the running environments with the configured name, one per line.",
		Action: func(ctx *cli.Context) error {
			return common.WithSession(ctx.Context, opts, false, func(ctx context.Context, sess *session.Session) error {
				target := sess.Target()

				ledger, err := sess.Oracle.Ledger(ctx, target.Name, target.Discriminator)
				if err != nil {
					return err
				}

				return Print(opts.Writer, target.Name, ledger)
			})
		},
	}
}

// Print writes one `<base>-<version>` line per version.
func Print(w io.Writer, base string, ledger discovery.VersionLedger) error {
	for _, version := range ledger {
		if _, err := fmt.Fprintf(w, "%s-%s\n", base, version); err != nil {
			return err
		}
	}

	return nil
}
