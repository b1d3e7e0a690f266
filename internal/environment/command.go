package environment

import "strings"

// Command is a lifecycle action that runs the terraform precheck.
type Command int

const (
	CommandCreate Command = iota
	CommandPlan
	CommandDestroy
)

var commandNames = map[Command]string{
	CommandCreate:  "create",
	CommandPlan:    "plan",
	CommandDestroy: "destroy",
}

func (command Command) String() string {
	return commandNames[command]
}

// ParseCommand converts user input to a Command.
func ParseCommand(name string) (Command, error) {
	for command, commandName := range commandNames {
		if strings.EqualFold(commandName, name) {
			return command, nil
		}
	}

	return 0, InvalidCommandError{Name: name}
}
