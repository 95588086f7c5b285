// Package validate holds the pure checks applied to declared plugin fields
// before any dependency resolution or git work begins. Everything here is
// deterministic and side-effect free, so a rejected manifest is guaranteed
// to have touched nothing.
package validate

import (
	"net/url"
	"strings"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/types"
)

// MaxNameLength bounds plugin names; they become directory names.
const MaxNameLength = 100

// RevisionLength is the length of a full commit identifier.
const RevisionLength = 40

// SourceHost is the only repository host doplug accepts.
const SourceHost = "github.com"

// shellMetacharacters are characters meaningful to a command interpreter.
// Rejecting them everywhere is defense-in-depth for the layers that build
// git argv vectors out of manifest strings.
const shellMetacharacters = ";&|`$()<>\n"

// ValidateName checks a plugin name.
// Names must:
// - Not be empty
// - Not exceed MaxNameLength
// - Contain only letters, digits, hyphen, underscore and dot
// - Not begin with a hyphen (it would read as a flag in argv)
func ValidateName(name string) error {
	if name == "" {
		return errors.New(errors.ErrNameInvalid, "plugin name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return errors.Newf(errors.ErrNameInvalid,
			"plugin name %q exceeds %d characters", name, MaxNameLength)
	}
	if name[0] == '-' {
		return errors.Newf(errors.ErrNameInvalid,
			"plugin name %q cannot begin with a hyphen", name)
	}
	for _, r := range name {
		if !isNameRune(r) {
			return errors.Newf(errors.ErrNameInvalid,
				"plugin name %q contains invalid character %q", name, r)
		}
	}
	return nil
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '.':
		return true
	}
	return false
}

// ValidateSource checks a repository address. Only HTTPS GitHub URLs of the
// form https://github.com/<owner>/<repo> (optionally suffixed .git) are
// accepted. git://, ssh:// and plain http:// are rejected on purpose: the
// narrowing is a security decision, not a technical one.
func ValidateSource(source string) error {
	if source == "" {
		return errors.New(errors.ErrSourceInvalid, "source cannot be empty")
	}
	u, err := url.Parse(source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceInvalid, "source %q is not a valid URL", source)
	}
	if u.Scheme != "https" {
		return errors.Newf(errors.ErrSourceInvalid,
			"source %q must use https, got %q", source, u.Scheme)
	}
	if u.Host != SourceHost {
		return errors.Newf(errors.ErrSourceInvalid,
			"source %q must be hosted on %s", source, SourceHost)
	}
	if u.User != nil {
		return errors.Newf(errors.ErrSourceInvalid,
			"source %q must not embed credentials", source)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return errors.Newf(errors.ErrSourceInvalid,
			"source %q must not have a query or fragment", source)
	}

	path := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	segments := strings.Split(path, "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return errors.Newf(errors.ErrSourceInvalid,
			"source %q must have an owner/repo path", source)
	}
	return nil
}

// ValidateRevision checks an exact commit identifier: 40 hexadecimal
// characters, either case.
func ValidateRevision(rev string) error {
	if !IsRevision(rev) {
		return errors.Newf(errors.ErrRevisionInvalid,
			"revision %q is not a full 40-character commit hash", rev)
	}
	return nil
}

// IsRevision reports whether rev is syntactically a full commit hash. The
// reconciliation engine uses this to recognize garbage output from a broken
// clone.
func IsRevision(rev string) bool {
	if len(rev) != RevisionLength {
		return false
	}
	for _, r := range rev {
		if !isHexRune(r) {
			return false
		}
	}
	return true
}

func isHexRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}
	return false
}

// CheckShellSafety rejects strings containing shell metacharacters.
// Manifest fields never legitimately contain them, so any occurrence is
// treated as hostile input rather than a formatting mistake.
func CheckShellSafety(s string) error {
	if i := strings.IndexAny(s, shellMetacharacters); i >= 0 {
		return errors.Newf(errors.ErrUnsafeArgument,
			"%q contains shell metacharacter %q", s, s[i])
	}
	return nil
}

// ValidateSpec applies every field check to one declared plugin, including
// the shell-safety net over all strings that can reach an argv.
func ValidateSpec(spec types.PluginSpec) error {
	if err := ValidateName(spec.Name); err != nil {
		return err
	}
	if err := ValidateSource(spec.Source); err != nil {
		return err
	}
	if err := ValidateRevision(spec.Revision); err != nil {
		return err
	}
	for _, s := range []string{spec.Name, spec.Source, spec.Revision} {
		if err := CheckShellSafety(s); err != nil {
			return err
		}
	}
	for _, dep := range spec.Dependencies {
		if err := ValidateName(dep); err != nil {
			return errors.Wrapf(err, errors.ErrNameInvalid,
				"plugin %q declares an invalid dependency name", spec.Name)
		}
	}
	return nil
}
