package environment

import (
	"context"

	"github.com/seek-and-deploy/deployer/internal/errors"
)

const (
	firstVersion = 'a'
	lastVersion  = 'z'
)

// ExistsFunc reports whether the version of base is in use.
type ExistsFunc func(ctx context.Context, base, version, discriminator string) (bool, error)

// NextVersion returns the lowest version letter for which exists is false.
func NextVersion(ctx context.Context, base, discriminator string, exists ExistsFunc) (string, error) {
	for letter := firstVersion; letter <= lastVersion; letter++ {
		version := string(letter)

		inUse, err := exists(ctx, base, version, discriminator)
		if err != nil {
			return "", err
		}

		if !inUse {
			return version, nil
		}
	}

	return "", errors.New(NoVersionsAvailableError{Base: base})
}
