package tf

import "fmt"

// Action is a terraform invocation used by the lifecycle.
type Action int

const (
	ActionInit Action = iota
	ActionGet
	ActionValidate
	ActionPlan
	ActionPlanDestroy
	ActionApply
	ActionDestroy
	ActionStatePull
	ActionOutput
	ActionVersion
)

var actionNames = map[Action]string{
	ActionInit:        "init",
	ActionGet:         "get",
	ActionValidate:    "validate",
	ActionPlan:        "plan",
	ActionPlanDestroy: "plan -destroy",
	ActionApply:       "apply",
	ActionDestroy:     "destroy",
	ActionStatePull:   "state pull",
	ActionOutput:      "output",
	ActionVersion:     "version",
}

func (action Action) String() string {
	if name, ok := actionNames[action]; ok {
		return name
	}

	return fmt.Sprintf("Action(%d)", int(action))
}

// Settings is everything terraform needs for one environment. It is passed by
// value; nothing is read from the deployer's own process environment.
type Settings struct {
	// Env is the complete environment of the terraform process.
	Env         map[string]string
	TFPath      string
	WorkingDir  string
	VarsFile    string
	Region      string
	Profile     string
	StateBucket string
	StateKey    string
}

// Args returns the terraform arguments for action, followed by extra.
func (settings Settings) Args(action Action, extra ...string) []string {
	var args []string

	switch action {
	case ActionInit:
		args = []string{CommandNameInit, FlagNameInput, FlagNameBackend}
		args = append(args, settings.backendConfig()...)
	case ActionGet:
		args = []string{CommandNameGet}
	case ActionValidate:
		args = []string{CommandNameValidate}
	case ActionPlan:
		args = append([]string{CommandNamePlan, FlagNameInput}, settings.varArgs()...)
	case ActionPlanDestroy:
		args = append([]string{CommandNamePlan, FlagNameInput, FlagNameDestroy}, settings.varArgs()...)
	case ActionApply:
		args = append([]string{CommandNameApply, FlagNameInput, FlagNameAutoApprove}, settings.varArgs()...)
	case ActionDestroy:
		args = append([]string{CommandNameDestroy, FlagNameInput, FlagNameAutoApprove}, settings.varArgs()...)
	case ActionStatePull:
		args = []string{CommandNameState, CommandNamePull}
	case ActionOutput:
		args = []string{CommandNameOutput}
	case ActionVersion:
		args = []string{CommandNameVersion, FlagNameJSON}
	}

	return append(args, extra...)
}

func (settings Settings) varArgs() []string {
	var args []string

	if settings.Region != "" {
		args = append(args, fmt.Sprintf("%s=%s=%s", FlagNameVar, RegionVarName, settings.Region))
	}

	if settings.VarsFile != "" {
		args = append(args, fmt.Sprintf("%s=%s", FlagNameVarFile, settings.VarsFile))
	}

	return args
}

func (settings Settings) backendConfig() []string {
	pairs := []struct{ key, value string }{
		{"bucket", settings.StateBucket},
		{"key", settings.StateKey},
		{"region", settings.Region},
		{"profile", settings.Profile},
	}

	var args []string

	for _, pair := range pairs {
		if pair.value != "" {
			args = append(args, fmt.Sprintf("%s=%s=%s", FlagNameBackendConfig, pair.key, pair.value))
		}
	}

	return args
}
