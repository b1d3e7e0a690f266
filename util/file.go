package util

import (
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/seek-and-deploy/deployer/internal/errors"
)

// FileExists returns true if the given file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if the path points to a directory.
func IsDir(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && fileInfo.IsDir()
}

// ExpandHome expands a leading `~` to the user's home directory.
func ExpandHome(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.New(err)
	}

	return expanded, nil
}

// EnsureDirectory creates path and its parents if they do not exist.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return errors.New(err)
	}

	return nil
}
