package environment

import (
	"fmt"

	"github.com/seek-and-deploy/deployer/internal/discovery"
)

// EnvironmentExistsError is returned by Create when the environment already runs.
type EnvironmentExistsError struct {
	Name      string
	Resources []discovery.ResourceDescriptor
}

func (err EnvironmentExistsError) Error() string {
	return fmt.Sprintf("Environment %s already exists with %d running resources", err.Name, len(err.Resources))
}

// EnvironmentNotFoundError is returned by Destroy when there is nothing to destroy.
type EnvironmentNotFoundError struct {
	Name string
}

func (err EnvironmentNotFoundError) Error() string {
	return fmt.Sprintf("Environment %s does not exist", err.Name)
}

// ResourcesRemainError is returned when terraform destroy succeeded but resources
// of the environment are still discoverable. Cleanup of state is skipped.
type ResourcesRemainError struct {
	Name      string
	Resources []discovery.ResourceDescriptor
}

func (err ResourcesRemainError) Error() string {
	return fmt.Sprintf("Environment %s still has %d resources after destroy: %v", err.Name, len(err.Resources), discovery.ARNs(err.Resources))
}

// NoVersionsAvailableError is returned when every version letter is in use.
type NoVersionsAvailableError struct {
	Base string
}

func (err NoVersionsAvailableError) Error() string {
	return fmt.Sprintf("All versions %c-%c of environment %s are in use", firstVersion, lastVersion, err.Base)
}

// InvalidCommandError is returned for an unknown command name.
type InvalidCommandError struct {
	Name string
}

func (err InvalidCommandError) Error() string {
	return fmt.Sprintf("Invalid command %q, expected one of create, plan, destroy", err.Name)
}
