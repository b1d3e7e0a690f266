package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/seek-and-deploy/deployer/cli"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/seek-and-deploy/deployer/util"
)

// The main entrypoint for the deployer
func main() {
	opts := options.NewDeployerOptions()

	defer errors.Recover(checkForErrorsAndExit(opts.Logger))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = log.ContextWithLogger(ctx, opts.Logger)

	err := cli.NewApp(opts).RunContext(ctx, os.Args)

	cancel()
	checkForErrorsAndExit(opts.Logger)(err)
}

// If there is an error, display it in the console and exit with a non-zero exit code. Otherwise, exit 0.
func checkForErrorsAndExit(logger log.Logger) func(error) {
	return func(err error) {
		if err == nil {
			os.Exit(0)
		}

		logger.Error(err.Error())

		if errStack := errors.ErrorStack(err); errStack != "" {
			logger.Trace(errStack)
		}

		// exit with the underlying error code
		exitCode, exitCodeErr := util.GetExitCode(err)
		if exitCodeErr != nil || exitCode == 0 {
			exitCode = 1
		}

		os.Exit(exitCode)
	}
}
