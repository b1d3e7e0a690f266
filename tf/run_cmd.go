package tf

import (
	"context"
	"encoding/json"
	"io"

	"github.com/hashicorp/go-version"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/seek-and-deploy/deployer/shell"
	"github.com/seek-and-deploy/deployer/util"
)

// DefaultTFPath is used when no terraform binary is configured.
const DefaultTFPath = "terraform"

// Runner runs terraform for one environment.
type Runner struct {
	logger    log.Logger
	writer    io.Writer
	errWriter io.Writer
	settings  Settings
}

// NewRunner returns a Runner streaming terraform output to writer and errWriter.
func NewRunner(logger log.Logger, settings Settings, writer, errWriter io.Writer) *Runner {
	if settings.TFPath == "" {
		settings.TFPath = DefaultTFPath
	}

	return &Runner{
		logger:    logger.WithField(log.FieldKeyTFBinary, settings.TFPath),
		writer:    writer,
		errWriter: errWriter,
		settings:  settings,
	}
}

// Settings returns a copy of the runner settings.
func (runner *Runner) Settings() Settings {
	return runner.settings
}

// Run runs the terraform action in the working directory.
func (runner *Runner) Run(ctx context.Context, action Action, extra ...string) error {
	_, err := runner.RunWithOutput(ctx, action, extra...)
	return err
}

// RunWithOutput runs the action and returns its captured output. The output of
// `state pull` and `version` is captured only.
func (runner *Runner) RunWithOutput(ctx context.Context, action Action, extra ...string) (*util.CmdOutput, error) {
	suppressStdout := action == ActionStatePull || action == ActionVersion

	opts := &shell.RunOptions{
		Writer:     runner.writer,
		ErrWriter:  runner.errWriter,
		Env:        runner.env(),
		WorkingDir: runner.settings.WorkingDir,
	}

	runner.logger.Infof("Running terraform %s", action)

	return shell.RunCommandWithOutput(ctx, runner.logger, opts, suppressStdout, runner.settings.TFPath, runner.settings.Args(action, extra...)...)
}

// HasRemoteState reports whether the working directory has already been
// initialised against its remote state.
func (runner *Runner) HasRemoteState() bool {
	return util.FileExists(LocalStatePath(runner.settings.WorkingDir))
}

// CheckVersion verifies that the terraform binary satisfies the constraint.
// An empty constraint accepts any version.
func (runner *Runner) CheckVersion(ctx context.Context, constraint string) error {
	if constraint == "" {
		return nil
	}

	constraints, err := version.NewConstraint(constraint)
	if err != nil {
		return errors.Errorf("invalid terraform version constraint %q: %w", constraint, err)
	}

	output, err := runner.RunWithOutput(ctx, ActionVersion)
	if err != nil {
		return err
	}

	actual, err := ParseVersionOutput(output.Stdout.Bytes())
	if err != nil {
		return err
	}

	if !constraints.Check(actual) {
		return VersionMismatchError{Constraint: constraint, Actual: actual.String()}
	}

	runner.logger.Debugf("Terraform version %s satisfies %s", actual, constraint)

	return nil
}

// ParseVersionOutput parses the output of `terraform version -json`.
func ParseVersionOutput(output []byte) (*version.Version, error) {
	var payload struct {
		Version string `json:"terraform_version"`
	}

	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, errors.Errorf("unable to parse terraform version output: %w", err)
	}

	parsed, err := version.NewVersion(payload.Version)
	if err != nil {
		return nil, errors.New(err)
	}

	return parsed, nil
}

func (runner *Runner) env() map[string]string {
	env := make(map[string]string, len(runner.settings.Env)+1)
	for key, value := range runner.settings.Env {
		env[key] = value
	}

	env[EnvNameTFInAutomation] = "1"

	return env
}
