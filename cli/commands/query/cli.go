// Package query prints the live resources of an environment.
package query

import (
	"context"
	"encoding/json"
	"io"

	"github.com/seek-and-deploy/deployer/cli/commands/common"
	"github.com/seek-and-deploy/deployer/internal/discovery"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/internal/session"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/urfave/cli/v2"
)

const CommandName = "query"

func NewCommand(opts *options.DeployerOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Print the live resources of the environment as JSON. An empty list means it does not exist.",
		Action: func(ctx *cli.Context) error {
			return common.WithSession(ctx.Context, opts, false, func(ctx context.Context, sess *session.Session) error {
				resources, err := sess.Orchestrator.Query(ctx, sess.Target())
				if err != nil {
					return err
				}

				return Print(opts.Writer, resources)
			})
		},
	}
}

// Print writes resources as an indented JSON array.
func Print(w io.Writer, resources []discovery.ResourceDescriptor) error {
	if resources == nil {
		resources = []discovery.ResourceDescriptor{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(resources); err != nil {
		return errors.New(err)
	}

	return nil
}
