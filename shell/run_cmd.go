// Package shell runs external commands such as terraform and git.
package shell

import (
	"context"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/seek-and-deploy/deployer/util"
)

// RunOptions configures how commands are executed. Env is the complete
// environment of the child process; the deployer's own environment is not
// inherited implicitly.
type RunOptions struct {
	Writer     io.Writer
	ErrWriter  io.Writer
	Env        map[string]string
	WorkingDir string
}

// RunCommand runs the command and streams its output to the configured writers.
func RunCommand(ctx context.Context, logger log.Logger, opts *RunOptions, command string, args ...string) error {
	_, err := RunCommandWithOutput(ctx, logger, opts, false, command, args...)
	return err
}

// RunCommandWithOutput runs the command and returns its captured output. When
// suppressStdout is set, stdout is captured but not streamed.
func RunCommandWithOutput(ctx context.Context, logger log.Logger, opts *RunOptions, suppressStdout bool, command string, args ...string) (*util.CmdOutput, error) {
	output := &util.CmdOutput{}

	logger.Debugf("Running command: %s %s", command, strings.Join(args, " "))

	var (
		stdout io.Writer = &output.Stdout
		stderr io.Writer = &output.Stderr
	)

	if opts.Writer != nil && !suppressStdout {
		stdout = io.MultiWriter(opts.Writer, &output.Stdout)
	}

	if opts.ErrWriter != nil {
		stderr = io.MultiWriter(opts.ErrWriter, &output.Stderr)
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = opts.WorkingDir
	cmd.Env = envList(opts.Env)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return output, errors.New(util.ProcessExecutionError{
			Err:        err,
			Output:     *output,
			WorkingDir: opts.WorkingDir,
			Command:    command,
			Args:       args,
		})
	}

	return output, nil
}

func envList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for key, value := range env {
		list = append(list, key+"="+value)
	}

	sort.Strings(list)

	return list
}
