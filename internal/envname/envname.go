// Package envname validates environment names.
//
// A name is one or two dash-separated tokens, at most MaxLength characters long. The
// optional second token is the version and must be a single ASCII letter, as in
// "qa-b".
package envname

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxLength is the longest accepted name, version suffix included.
	MaxLength = 20
	// MaxTokens is the number of dash-separated tokens a name may have.
	MaxTokens = 2

	separator = "-"
)

var versionToken = regexp.MustCompile(`^[A-Za-z]$`)

// Validate checks name against the naming rules, in order, and returns the first
// violation.
func Validate(name string) error {
	if name == "" {
		return EmptyNameError{}
	}

	if length := utf8.RuneCountInString(name); length > MaxLength {
		return NameTooLongError{Name: name, Length: length}
	}

	tokens := strings.Split(name, separator)
	if len(tokens) > MaxTokens {
		return TooManyTokensError{Name: name, Count: len(tokens)}
	}

	if len(tokens) == MaxTokens && !versionToken.MatchString(tokens[1]) {
		return InvalidVersionTokenError{Name: name, Token: tokens[1]}
	}

	return nil
}

// Effective returns the name used for tagging and state: base alone, or
// base-version when a version is given.
func Effective(base, version string) string {
	if version == "" {
		return base
	}

	return base + separator + version
}

// Split is the inverse of Effective for a valid name.
func Split(name string) (base, version string) {
	base, version, _ = strings.Cut(name, separator)
	return base, version
}
