package tf

import "fmt"

// VersionMismatchError is returned when the terraform binary does not satisfy the
// configured version constraint.
type VersionMismatchError struct {
	Constraint string
	Actual     string
}

func (err VersionMismatchError) Error() string {
	return fmt.Sprintf("terraform %s does not satisfy the required version %s", err.Actual, err.Constraint)
}
