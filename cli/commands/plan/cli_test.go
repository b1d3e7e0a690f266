package plan_test

import (
	"testing"

	"github.com/seek-and-deploy/deployer/cli/commands/plan"
	"github.com/seek-and-deploy/deployer/internal/environment"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		arg         string
		planDestroy bool
		expected    environment.Command
		expectErr   bool
	}{
		{name: "default", expected: environment.CommandPlan},
		{name: "destroy flag", planDestroy: true, expected: environment.CommandDestroy},
		{name: "create argument", arg: "create", expected: environment.CommandCreate},
		{name: "destroy argument", arg: "DESTROY", expected: environment.CommandDestroy},
		{name: "destroy flag and argument", arg: "destroy", planDestroy: true, expected: environment.CommandDestroy},
		{name: "conflicting flag", arg: "create", planDestroy: true, expectErr: true},
		{name: "unknown argument", arg: "apply", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			command, err := plan.ParseArgs(tc.arg, tc.planDestroy)
			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, command)
		})
	}

	_, err := plan.ParseArgs("apply", false)

	var invalid environment.InvalidCommandError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "apply", invalid.Name)
}
