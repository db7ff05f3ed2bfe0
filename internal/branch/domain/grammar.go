package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	ownerPattern       = regexp.MustCompile(`^[a-z0-9]+$`)
	descriptionPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Grammar parses and validates branch names.
type Grammar struct {
	// PrivilegedOwner is the owner allowed to create hotfixes without a
	// description. Empty disables the privileged variant.
	PrivilegedOwner string
}

// NewGrammar returns a Grammar for the given privileged owner.
func NewGrammar(privilegedOwner string) Grammar {
	return Grammar{PrivilegedOwner: privilegedOwner}
}

// IsPrivileged reports whether owner is the privileged hotfix owner.
func (g Grammar) IsPrivileged(owner string) bool {
	return g.PrivilegedOwner != "" && owner == g.PrivilegedOwner
}

// Parse parses raw into a Name.
//
// Segment count and charset violations fail with MalformedName, an unknown
// type with InvalidType, and a description that is absent or present against
// the type's rule with MissingDescription or UnexpectedDescription.
func (g Grammar) Parse(raw string) (Name, error) {
	segs := strings.Split(raw, "/")
	if len(segs) != 3 && len(segs) != 4 {
		return Name{}, NewError(KindMalformedName, raw,
			fmt.Sprintf("expected <version>/<owner>/<type>[/<description>], got %d segments", len(segs)))
	}

	version, err := ParseVersion(segs[0])
	if err != nil {
		return Name{}, reRef(err, raw)
	}
	owner := segs[1]
	if !ownerPattern.MatchString(owner) {
		return Name{}, NewError(KindMalformedName, raw, "owner must be lowercase letters and digits")
	}
	typ, ok := ParseType(segs[2])
	if !ok {
		return Name{}, NewError(KindInvalidType, raw,
			fmt.Sprintf("type %q must be one of feature, bugfix, hotfix, release", segs[2]))
	}

	hasDescription := len(segs) == 4
	switch want := typ.wantsDescription(g.IsPrivileged(owner)); {
	case want && !hasDescription:
		return Name{}, NewError(KindMissingDescription, raw,
			fmt.Sprintf("%s branches require a description", typ))
	case !want && hasDescription:
		return Name{}, NewError(KindUnexpectedDescription, raw, describeNoDescription(typ))
	}

	n := Name{Version: version, Owner: owner, Type: typ}
	if hasDescription {
		if !descriptionPattern.MatchString(segs[3]) {
			return Name{}, NewError(KindMalformedName, raw,
				"description must be lowercase letters and digits separated by single hyphens")
		}
		n.Description = segs[3]
	}
	return n, nil
}

// Validate checks a Name built from parts, e.g. CLI arguments, against the
// same rules Parse applies.
func (g Grammar) Validate(n Name) error {
	_, err := g.Parse(n.String())
	return err
}

// ParseRef parses raw as either the trunk branch or a convention name.
func (g Grammar) ParseRef(raw string) (Ref, error) {
	if raw == TrunkName {
		return TrunkRef(), nil
	}
	n, err := g.Parse(raw)
	if err != nil {
		return Ref{}, err
	}
	return NameRef(n), nil
}

func describeNoDescription(t Type) string {
	if t == TypeRelease {
		return "release branches never have a description"
	}
	return "privileged hotfix branches must omit the description"
}

// reRef points a version error at the full branch name.
func reRef(err error, raw string) error {
	if e, ok := err.(*Error); ok {
		cp := *e
		cp.Ref = raw
		return &cp
	}
	return err
}
