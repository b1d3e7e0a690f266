// Package git fetches the terraform code of an environment: clones remote
// repositories and switches local checkouts to the requested branch.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/storage/filesystem"
)

// GitRunner runs git commands in WorkDir.
type GitRunner struct {
	Env     map[string]string
	GitPath string
	WorkDir string
}

// NewGitRunner returns a GitRunner using the git binary found in PATH.
func NewGitRunner() (*GitRunner, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, &WrappedError{Op: "git", Context: "git not found", Err: ErrCommandSpawn}
	}

	return &GitRunner{GitPath: gitPath}, nil
}

// WithWorkDir returns a copy of the runner working in workDir.
func (g *GitRunner) WithWorkDir(workDir string) *GitRunner {
	clone := *g
	clone.WorkDir = workDir

	return &clone
}

// WithEnv returns a copy of the runner whose commands get exactly env.
func (g *GitRunner) WithEnv(env map[string]string) *GitRunner {
	clone := *g
	clone.Env = env

	return &clone
}

// RequiresWorkDir returns an error if no working directory is set.
func (g *GitRunner) RequiresWorkDir() error {
	if g.WorkDir == "" {
		return &WrappedError{Op: "git", Context: "no working directory set", Err: ErrNoWorkDir}
	}

	return nil
}

// Clone clones repo, with its submodules, into dest inside WorkDir.
func (g *GitRunner) Clone(ctx context.Context, repo, branch, dest string) error {
	if err := g.RequiresWorkDir(); err != nil {
		return err
	}

	args := []string{"--recursive"}

	if branch != "" {
		args = append(args, "--branch", branch)
	}

	args = append(args, repo, dest)

	return g.run(ctx, "git_clone", ErrGitClone, "clone", args...)
}

// Pull updates the checkout in WorkDir from its upstream.
func (g *GitRunner) Pull(ctx context.Context) error {
	if err := g.RequiresWorkDir(); err != nil {
		return err
	}

	return g.run(ctx, "git_pull", ErrGitPull, "pull")
}

// Checkout switches the checkout in WorkDir to branch.
func (g *GitRunner) Checkout(ctx context.Context, branch string) error {
	if err := g.RequiresWorkDir(); err != nil {
		return err
	}

	return g.run(ctx, "git_checkout", ErrGitCheckout, "checkout", branch)
}

// CurrentBranch returns the short name of the branch checked out in WorkDir.
func (g *GitRunner) CurrentBranch() (string, error) {
	if err := g.RequiresWorkDir(); err != nil {
		return "", err
	}

	fs := osfs.New(g.WorkDir)
	if _, err := fs.Stat(git.GitDirName); err == nil {
		if fs, err = fs.Chroot(git.GitDirName); err != nil {
			return "", &WrappedError{Op: "git_open", Context: g.WorkDir, Err: err}
		}
	}

	storage := filesystem.NewStorageWithOptions(fs, cache.NewObjectLRUDefault(), filesystem.Options{KeepDescriptors: true})
	defer storage.Close()

	repo, err := git.Open(storage, fs)
	if err != nil {
		return "", &WrappedError{Op: "git_open", Context: err.Error(), Err: ErrOpenRepo}
	}

	head, err := repo.Head()
	if err != nil {
		return "", &WrappedError{Op: "git_head", Context: err.Error(), Err: ErrOpenRepo}
	}

	if !head.Name().IsBranch() {
		return "", &WrappedError{Op: "git_head", Context: head.Hash().String(), Err: ErrDetachedHead}
	}

	return head.Name().Short(), nil
}

func (g *GitRunner) run(ctx context.Context, op string, sentinel Error, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, g.GitPath, append([]string{name}, args...)...)
	cmd.Dir = g.WorkDir

	if g.Env != nil {
		cmd.Env = envList(g.Env)
	}

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &WrappedError{Op: op, Context: strings.TrimSpace(stderr.String()), Err: sentinel}
	}

	return nil
}

func envList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for key, value := range env {
		list = append(list, key+"="+value)
	}

	sort.Strings(list)

	return list
}
