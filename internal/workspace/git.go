package workspace

import (
	"context"

	"github.com/seek-and-deploy/deployer/internal/git"
)

// GitCLI runs Git against an explicit directory per call.
type GitCLI struct {
	runner *git.GitRunner
}

func NewGitCLI(runner *git.GitRunner) *GitCLI {
	return &GitCLI{runner: runner}
}

func (cli *GitCLI) Clone(ctx context.Context, workDir, repo, branch, dest string) error {
	return cli.runner.WithWorkDir(workDir).Clone(ctx, repo, branch, dest)
}

func (cli *GitCLI) Pull(ctx context.Context, dir string) error {
	return cli.runner.WithWorkDir(dir).Pull(ctx)
}

func (cli *GitCLI) Checkout(ctx context.Context, dir, branch string) error {
	return cli.runner.WithWorkDir(dir).Checkout(ctx, branch)
}

func (cli *GitCLI) CurrentBranch(dir string) (string, error) {
	return cli.runner.WithWorkDir(dir).CurrentBranch()
}
