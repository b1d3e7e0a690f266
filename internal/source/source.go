// Package source parses references to the Terraform code of an environment.
//
// A reference is a git URL, an scp-like git address or a local path, optionally
// followed by `?branch=<name>` and by `//<subdirectory>`:
//
//	git@github.com:acme/infra.git?branch=main//envs/web
//	https://github.com/acme/infra.git//envs/web
//	/src/infra//envs/web
package source

import (
	"path"
	"regexp"
	"strings"
)

const (
	branchMarker = "?branch="
	subdirMarker = "//"
	gitSuffix    = ".git"
)

// schemePrefix matches a URL scheme such as `https://`, optionally preceded by a
// forced getter such as `git::`. Its `//` is never a subdirectory separator.
var schemePrefix = regexp.MustCompile(`^(?:[A-Za-z][A-Za-z0-9+.-]*::)?[A-Za-z][A-Za-z0-9+.-]*://`)

// Reference is a parsed source reference. Location never contains a branch
// marker or a subdirectory separator outside of its scheme.
type Reference struct {
	Location     string
	Branch       string
	Subdirectory string
}

// Parse splits ref into location, branch and subdirectory. It never fails; a
// reference without markers is returned as a bare location.
func Parse(ref string) Reference {
	if prefix := schemePrefix.FindString(ref); prefix != "" {
		parsed := parse(ref[len(prefix):])
		parsed.Location = prefix + parsed.Location

		return parsed
	}

	return parse(ref)
}

func parse(ref string) Reference {
	if location, rest, ok := strings.Cut(ref, branchMarker); ok {
		branch, subdir, _ := strings.Cut(rest, subdirMarker)

		if loc, locSubdir, found := strings.Cut(location, subdirMarker); found {
			location = loc
			subdir = joinSubdir(locSubdir, subdir)
		}

		return Reference{Location: location, Branch: branch, Subdirectory: subdir}
	}

	if location, subdir, ok := strings.Cut(ref, subdirMarker); ok {
		return Reference{Location: location, Subdirectory: subdir}
	}

	return Reference{Location: ref}
}

func joinSubdir(first, second string) string {
	switch {
	case first == "":
		return second
	case second == "":
		return first
	}

	return first + "/" + second
}

// String renders the reference back into its textual form.
func (ref Reference) String() string {
	var sb strings.Builder

	sb.WriteString(ref.Location)

	if ref.Branch != "" {
		sb.WriteString(branchMarker + ref.Branch)
	}

	if ref.Subdirectory != "" {
		sb.WriteString(subdirMarker + ref.Subdirectory)
	}

	return sb.String()
}

// IsRemote reports whether ref points at a git repository that must be cloned.
func IsRemote(ref string) bool {
	return strings.Contains(ref, gitSuffix)
}

// LocalDirName returns the directory a remote reference is cloned into, relative
// to the work dir: the repository name, joined with the subdirectory if any.
func LocalDirName(ref string) string {
	parsed := Parse(ref)

	location := strings.TrimRight(parsed.Location, "/")
	if idx := strings.LastIndexAny(location, "/:"); idx >= 0 {
		location = location[idx+1:]
	}

	name := strings.TrimSuffix(location, gitSuffix)

	if parsed.Subdirectory == "" {
		return name
	}

	return path.Join(name, parsed.Subdirectory)
}
