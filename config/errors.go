package config

import (
	"fmt"
	"strings"
)

// MissingParameterError is returned when a setting needed by the current stage is
// absent from the deployer config.
type MissingParameterError struct {
	Name   string
	Reason string
}

func (err MissingParameterError) Error() string {
	if err.Reason == "" {
		return fmt.Sprintf("%s is not set in the deployer config", err.Name)
	}

	return fmt.Sprintf("%s is not set in the deployer config: %s", err.Name, err.Reason)
}

// SchemaValidationError lists every violation of the config schema.
type SchemaValidationError struct {
	Path   string
	Errors []string
}

func (err SchemaValidationError) Error() string {
	return fmt.Sprintf("%s does not match the config schema:\n  %s", err.Path, strings.Join(err.Errors, "\n  "))
}

type InvalidOverrideError string

func (err InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid --var %q: expected key=value or a JSON object", string(err))
}

type UnsupportedVersionError struct {
	Version int
}

func (err UnsupportedVersionError) Error() string {
	return fmt.Sprintf("config_version %d is newer than this deployer supports (%d)", err.Version, CurrentVersion)
}
