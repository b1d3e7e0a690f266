package util

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/seek-and-deploy/deployer/internal/errors"
)

// CmdOutput holds the captured output of a command.
type CmdOutput struct {
	Stdout bytes.Buffer
	Stderr bytes.Buffer
}

// GetExitCode returns the exit code carried by err, or err itself when it does not
// come from a process that exited.
func GetExitCode(err error) (int, error) {
	var exitStatus interface {
		ExitStatus() (int, error)
	}

	if errors.As(err, &exitStatus) {
		return exitStatus.ExitStatus()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	var multiErr *errors.MultiError
	if errors.As(err, &multiErr) {
		for _, err := range multiErr.WrappedErrors() {
			if code, codeErr := GetExitCode(err); codeErr == nil {
				return code, nil
			}
		}
	}

	return 0, err
}

// ProcessRan reports whether err comes from a process that was started and exited
// with a non-zero status, as opposed to one that could not be started at all.
func ProcessRan(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// ProcessExecutionError is returned when a command fails. It keeps the captured output.
type ProcessExecutionError struct {
	Err        error
	Output     CmdOutput
	WorkingDir string
	Command    string
	Args       []string
}

func (err ProcessExecutionError) Error() string {
	msg := fmt.Sprintf("Failed to execute \"%s %s\" in %s", err.Command, strings.Join(err.Args, " "), err.WorkingDir)

	if stderr := strings.TrimSpace(err.Output.Stderr.String()); stderr != "" {
		msg += "\n" + stderr
	}

	return fmt.Sprintf("%s\n%v", msg, err.Err)
}

func (err ProcessExecutionError) ExitStatus() (int, error) {
	var exitErr *exec.ExitError
	if errors.As(err.Err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return 0, err
}

func (err ProcessExecutionError) Unwrap() error {
	return err.Err
}
