// Package flags declares the global flags of the deployer CLI.
package flags

import (
	"strings"

	"github.com/seek-and-deploy/deployer/options"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/urfave/cli/v2"
)

const (
	EnvVarPrefix = "DEPLOYER_"

	ConfigFlagName           = "config"
	VarFlagName              = "var"
	LogLevelFlagName         = "log-level"
	LogFormatFlagName        = "log-format"
	NoColorFlagName          = "no-color"
	TFPathFlagName           = "tf-path"
	SkipProfileCheckFlagName = "skip-profile-check"
	KeepWorkDirFlagName      = "keep-workdir"
)

// EnvVars returns the environment variable that sets the flag with the given name.
func EnvVars(name string) []string {
	return []string{EnvVarPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}

// NewGlobalFlags returns the flags shared by every command. Parsed values land in
// opts; the log level is parsed once the app runs.
func NewGlobalFlags(opts *options.DeployerOptions, logLevel *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        ConfigFlagName,
			Aliases:     []string{"c"},
			EnvVars:     EnvVars(ConfigFlagName),
			Usage:       "Path to the deployer config file.",
			Value:       opts.ConfigPath,
			Destination: &opts.ConfigPath,
		},
		&cli.StringSliceFlag{
			Name:  VarFlagName,
			Usage: "Override a config setting, as key=value (dotted keys address nested settings) or a JSON object. May be repeated.",
		},
		&cli.StringFlag{
			Name:        LogLevelFlagName,
			EnvVars:     EnvVars(LogLevelFlagName),
			Usage:       "Sets the logging level: " + log.AllLevels.String() + ".",
			Value:       opts.LogLevel.String(),
			Destination: logLevel,
		},
		&cli.StringFlag{
			Name:        LogFormatFlagName,
			EnvVars:     EnvVars(LogFormatFlagName),
			Usage:       "Sets the log format: " + log.FormatText + " or " + log.FormatJSON + ".",
			Value:       log.FormatText,
			Destination: &opts.LogFormat,
		},
		&cli.BoolFlag{
			Name:        NoColorFlagName,
			EnvVars:     EnvVars(NoColorFlagName),
			Usage:       "Disables colors in log output.",
			Destination: &opts.DisableColors,
		},
		&cli.StringFlag{
			Name:        TFPathFlagName,
			EnvVars:     EnvVars(TFPathFlagName),
			Usage:       "Path to the Terraform binary.",
			Value:       opts.TerraformPath,
			Destination: &opts.TerraformPath,
		},
		&cli.BoolFlag{
			Name:        SkipProfileCheckFlagName,
			EnvVars:     EnvVars(SkipProfileCheckFlagName),
			Usage:       "Do not check that the IAM account alias matches the configured AWS profile.",
			Destination: &opts.SkipProfileCheck,
		},
		&cli.BoolFlag{
			Name:        KeepWorkDirFlagName,
			EnvVars:     EnvVars(KeepWorkDirFlagName),
			Usage:       "Keep the per-run work dir after the command finishes.",
			Destination: &opts.KeepWorkDir,
		},
	}
}
