package shell_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/seek-and-deploy/deployer/shell"
	"github.com/seek-and-deploy/deployer/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommandWithOutput(t *testing.T) {
	t.Parallel()

	var streamed bytes.Buffer

	opts := &shell.RunOptions{
		Writer:     &streamed,
		Env:        map[string]string{"PATH": "/usr/bin:/bin", "AWS_PROFILE": "sandbox"},
		WorkingDir: t.TempDir(),
	}

	out, err := shell.RunCommandWithOutput(context.Background(), log.Discard(), opts, false, "sh", "-c", "echo $AWS_PROFILE")
	require.NoError(t, err)
	assert.Equal(t, "sandbox\n", out.Stdout.String())
	assert.Equal(t, "sandbox\n", streamed.String())
}

func TestRunCommandSuppressStdout(t *testing.T) {
	t.Parallel()

	var streamed bytes.Buffer

	opts := &shell.RunOptions{Writer: &streamed, Env: map[string]string{"PATH": "/usr/bin:/bin"}}

	out, err := shell.RunCommandWithOutput(context.Background(), log.Discard(), opts, true, "sh", "-c", "echo hidden")
	require.NoError(t, err)
	assert.Equal(t, "hidden\n", out.Stdout.String())
	assert.Empty(t, streamed.String())
}

func TestRunCommandFailure(t *testing.T) {
	t.Parallel()

	opts := &shell.RunOptions{Env: map[string]string{"PATH": "/usr/bin:/bin"}}

	err := shell.RunCommand(context.Background(), log.Discard(), opts, "sh", "-c", "echo broken >&2; exit 2")
	require.Error(t, err)

	var processErr util.ProcessExecutionError
	require.ErrorAs(t, err, &processErr)
	assert.Equal(t, "broken\n", processErr.Output.Stderr.String())

	code, codeErr := util.GetExitCode(err)
	require.NoError(t, codeErr)
	assert.Equal(t, 2, code)
}
