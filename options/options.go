// Package options provides the set of options that configure the behavior of the deployer program.
package options

import (
	"io"
	"os"
	"strings"

	"github.com/seek-and-deploy/deployer/pkg/log"
)

const (
	// TerraformDefaultPath just takes terraform from the path
	TerraformDefaultPath = "terraform"

	DefaultConfigPath = "deployer.json"

	defaultLogLevel = log.InfoLevel
)

// DeployerOptions represents options that configure the behavior of the deployer program.
type DeployerOptions struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Logger    log.Logger

	// Environment variables visible to the deployer and passed on, with the AWS
	// settings of the config, to Terraform and git.
	Env map[string]string

	ConfigPath    string
	Vars          []string
	LogLevel      log.Level
	LogFormat     string
	DisableColors bool
	TerraformPath string
	WorkingDir    string

	// SkipProfileCheck disables the check that the IAM account alias matches the
	// configured AWS profile.
	SkipProfileCheck bool
	// KeepWorkDir leaves the per-run work dir in place after the command.
	KeepWorkDir bool
	// PlanDestroy makes the plan command plan a destroy instead of a create.
	PlanDestroy bool
}

func NewDeployerOptions() *DeployerOptions {
	return NewDeployerOptionsWithWriters(os.Stdout, os.Stderr)
}

func NewDeployerOptionsWithWriters(stdout, stderr io.Writer) *DeployerOptions {
	return &DeployerOptions{
		Writer:        stdout,
		ErrWriter:     stderr,
		Logger:        log.New(log.WithOutput(stderr), log.WithLevel(defaultLogLevel)),
		Env:           map[string]string{},
		ConfigPath:    DefaultConfigPath,
		LogLevel:      defaultLogLevel,
		TerraformPath: TerraformDefaultPath,
	}
}

// ConfigureLogger rebuilds the logger from the log level, format and color settings.
func (opts *DeployerOptions) ConfigureLogger() error {
	formatter, err := log.NewFormatter(opts.LogFormat, opts.DisableColors)
	if err != nil {
		return err
	}

	opts.Logger.SetOptions(log.WithLevel(opts.LogLevel), log.WithOutput(opts.ErrWriter), log.WithFormatter(formatter))

	return nil
}

// ParseEnvs converts a list of `key=value` strings, as returned by os.Environ, to a map.
func ParseEnvs(envs []string) map[string]string {
	parsed := make(map[string]string, len(envs))

	for _, env := range envs {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		parsed[strings.TrimSpace(key)] = value
	}

	return parsed
}
