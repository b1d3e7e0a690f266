// Package cli builds the deployer command-line application.
package cli

import (
	"os"
	"path/filepath"

	"github.com/gruntwork-io/go-commons/version"
	"github.com/seek-and-deploy/deployer/cli/commands"
	"github.com/seek-and-deploy/deployer/cli/flags"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/urfave/cli/v2"
)

const AppName = "deployer"

// NewApp creates the deployer CLI App.
func NewApp(opts *options.DeployerOptions) *cli.App {
	logLevel := opts.LogLevel.String()

	return &cli.App{
		Name:      AppName,
		Usage:     "Creates, plans, queries and destroys named Terraform environments on AWS.",
		UsageText: "deployer [global options] <command> [command options] [arguments...]",
		Version:   version.GetVersion(),
		Writer:    opts.Writer,
		ErrWriter: opts.ErrWriter,
		Flags:     flags.NewGlobalFlags(opts, &logLevel),
		Commands:  commands.New(opts),
		// --var values may be JSON objects containing commas.
		DisableSliceFlagSeparator: true,
		Before: func(ctx *cli.Context) error {
			return initialSetup(ctx, opts, logLevel)
		},
		// main logs the error and picks the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func initialSetup(ctx *cli.Context, opts *options.DeployerOptions, logLevel string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	opts.LogLevel = level

	if err := opts.ConfigureLogger(); err != nil {
		return err
	}

	opts.Env = options.ParseEnvs(os.Environ())
	opts.Vars = ctx.StringSlice(flags.VarFlagName)

	if opts.WorkingDir == "" {
		currentDir, err := os.Getwd()
		if err != nil {
			return errors.New(err)
		}

		opts.WorkingDir = currentDir
	}

	if !filepath.IsAbs(opts.ConfigPath) && !isHomeRelative(opts.ConfigPath) {
		opts.ConfigPath = filepath.Join(opts.WorkingDir, opts.ConfigPath)
	}

	opts.Logger.Debugf("deployer version: %s", ctx.App.Version)

	return nil
}

func isHomeRelative(path string) bool {
	return len(path) > 0 && path[0] == '~'
}
