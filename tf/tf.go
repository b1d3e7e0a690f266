// Package tf builds and runs the terraform commands of an environment lifecycle.
package tf

import (
	"path/filepath"
)

const (
	CommandNameInit     = "init"
	CommandNameGet      = "get"
	CommandNameValidate = "validate"
	CommandNamePlan     = "plan"
	CommandNameApply    = "apply"
	CommandNameDestroy  = "destroy"
	CommandNameState    = "state"
	CommandNamePull     = "pull"
	CommandNameOutput   = "output"
	CommandNameVersion  = "version"

	FlagNameInput         = "-input=false"
	FlagNameAutoApprove   = "-auto-approve"
	FlagNameDestroy       = "-destroy"
	FlagNameJSON          = "-json"
	FlagNameBackend       = "-backend=true"
	FlagNameBackendConfig = "-backend-config"
	FlagNameVar           = "-var"
	FlagNameVarFile       = "-var-file"

	// RegionVarName is the Terraform variable receiving the AWS region.
	RegionVarName = "aws_region"

	EnvNameTFInAutomation = "TF_IN_AUTOMATION"

	DataDir        = ".terraform"
	LocalStateFile = "terraform.tfstate"
)

// LocalStatePath is the state file Terraform keeps next to the configuration once
// the remote backend has been initialised.
func LocalStatePath(workingDir string) string {
	return filepath.Join(workingDir, DataDir, LocalStateFile)
}
