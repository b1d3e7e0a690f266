package git

import "fmt"

// Error types that can be returned by the git package
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrCommandSpawn Error = "failed to spawn git command"
	ErrNoWorkDir    Error = "working directory not set"
	ErrGitClone     Error = "failed to complete git clone"
	ErrGitPull      Error = "failed to complete git pull"
	ErrGitCheckout  Error = "failed to complete git checkout"
	ErrOpenRepo     Error = "failed to open git repository"
	ErrDetachedHead Error = "repository is not on a branch"
)

// WrappedError provides additional context for errors
type WrappedError struct {
	Err     error
	Op      string
	Context string
}

func (e *WrappedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Context, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WrappedError) Unwrap() error {
	return e.Err
}
