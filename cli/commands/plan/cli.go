// Package plan runs the precheck of a create or destroy without changing anything.
package plan

import (
	"context"

	"github.com/seek-and-deploy/deployer/cli/commands/common"
	"github.com/seek-and-deploy/deployer/internal/environment"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/internal/session"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "plan"

	DestroyFlagName = "destroy"
)

func NewCommand(opts *options.DeployerOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Run the Terraform precheck of a lifecycle command, ending with terraform plan.",
		ArgsUsage: "[create|plan|destroy]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        DestroyFlagName,
				Usage:       "Plan a destroy. Same as passing destroy as the argument.",
				Destination: &opts.PlanDestroy,
			},
		},
		Action: func(ctx *cli.Context) error {
			command, err := ParseArgs(ctx.Args().First(), opts.PlanDestroy)
			if err != nil {
				return err
			}

			return common.WithSession(ctx.Context, opts, true, func(ctx context.Context, sess *session.Session) error {
				return sess.Orchestrator.Plan(ctx, sess.Target(), command)
			})
		},
	}
}

// ParseArgs returns the lifecycle command whose precheck is run: the argument
// when given, otherwise destroy when planDestroy is set and plan when it is not.
func ParseArgs(arg string, planDestroy bool) (environment.Command, error) {
	if arg == "" {
		if planDestroy {
			return environment.CommandDestroy, nil
		}

		return environment.CommandPlan, nil
	}

	command, err := environment.ParseCommand(arg)
	if err != nil {
		return command, errors.New(err)
	}

	if planDestroy && command != environment.CommandDestroy {
		return command, errors.Errorf("--%s conflicts with %s", DestroyFlagName, arg)
	}

	return command, nil
}
