// Package commands lists the deployer CLI commands.
package commands

import (
	"github.com/seek-and-deploy/deployer/cli/commands/create"
	"github.com/seek-and-deploy/deployer/cli/commands/destroy"
	"github.com/seek-and-deploy/deployer/cli/commands/nextversion"
	"github.com/seek-and-deploy/deployer/cli/commands/output"
	"github.com/seek-and-deploy/deployer/cli/commands/plan"
	"github.com/seek-and-deploy/deployer/cli/commands/query"
	"github.com/seek-and-deploy/deployer/cli/commands/versions"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/urfave/cli/v2"
)

func New(opts *options.DeployerOptions) []*cli.Command {
	return []*cli.Command{
		create.NewCommand(opts),
		destroy.NewCommand(opts),
		plan.NewCommand(opts),
		query.NewCommand(opts),
		nextversion.NewCommand(opts),
		versions.NewCommand(opts),
		output.NewCommand(opts),
	}
}
