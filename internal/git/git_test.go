package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/seek-and-deploy/deployer/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with one commit on main and a feature branch.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	commands := [][]string{
		{"init", "-q", "-b", "main"},
		{"-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "--allow-empty", "-m", "init"},
		{"branch", "feature"},
	}

	for _, args := range commands {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir

		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	return dir
}

func newRunner(t *testing.T) *git.GitRunner {
	t.Helper()

	runner, err := git.NewGitRunner()
	if err != nil {
		t.Skip("git is not installed")
	}

	return runner
}

func TestGitRunner_RequiresWorkDir(t *testing.T) {
	t.Parallel()

	runner := newRunner(t)

	err := runner.Pull(context.Background())
	require.ErrorIs(t, err, git.ErrNoWorkDir)

	_, err = runner.CurrentBranch()
	require.ErrorIs(t, err, git.ErrNoWorkDir)
}

func TestGitRunner_CurrentBranchAndCheckout(t *testing.T) {
	t.Parallel()

	repo := initRepo(t)
	runner := newRunner(t).WithWorkDir(repo)

	branch, err := runner.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	require.NoError(t, runner.Checkout(context.Background(), "feature"))

	branch, err = runner.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "feature", branch)

	err = runner.Checkout(context.Background(), "missing")
	require.ErrorIs(t, err, git.ErrGitCheckout)
}

func TestGitRunner_Clone(t *testing.T) {
	t.Parallel()

	repo := initRepo(t)
	workDir := t.TempDir()
	runner := newRunner(t).WithWorkDir(workDir)

	require.NoError(t, runner.Clone(context.Background(), repo, "feature", "infra"))

	branch, err := runner.WithWorkDir(filepath.Join(workDir, "infra")).CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "feature", branch)

	err = runner.Clone(context.Background(), filepath.Join(workDir, "nope"), "", "other")
	require.ErrorIs(t, err, git.ErrGitClone)

	_, statErr := os.Stat(filepath.Join(workDir, "other"))
	assert.True(t, os.IsNotExist(statErr))
}
