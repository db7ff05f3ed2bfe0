package domain

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is the major.minor.patch segment of a branch name.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// String formats the version as major.minor.patch.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare orders versions numerically, returning -1, 0 or 1.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, o.Patch)
}

// ParseVersion parses a major.minor.patch string. Leading zeros are rejected
// so that every accepted version formats back to the same text.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, NewError(KindMalformedName, s, "version must be <major>.<minor>.<patch>")
	}
	var nums [3]uint64
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return Version{}, NewError(KindMalformedName, s, "version components must be decimal digits")
		}
		if len(p) > 1 && p[0] == '0' {
			return Version{}, NewError(KindMalformedName, s, "version components must not have leading zeros")
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, &Error{Kind: KindMalformedName, Ref: s, Detail: "version component out of range", Err: err}
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Type is the third segment of a branch name.
type Type string

const (
	TypeBugfix  Type = "bugfix"
	TypeFeature Type = "feature"
	TypeHotfix  Type = "hotfix"
	TypeRelease Type = "release"
)

// Types returns every valid branch type in lexical order.
func Types() []Type {
	return []Type{TypeBugfix, TypeFeature, TypeHotfix, TypeRelease}
}

// ParseType reports whether s names a valid branch type.
func ParseType(s string) (Type, bool) {
	switch t := Type(s); t {
	case TypeBugfix, TypeFeature, TypeHotfix, TypeRelease:
		return t, true
	}
	return "", false
}

// wantsDescription reports whether a branch of this type must carry a
// description segment. Privileged hotfixes and releases must omit it.
func (t Type) wantsDescription(privileged bool) bool {
	switch t {
	case TypeRelease:
		return false
	case TypeHotfix:
		return !privileged
	default:
		return true
	}
}

// Name is a parsed convention branch name:
// <major.minor.patch>/<owner>/<type>[/<description>].
type Name struct {
	Version     Version
	Owner       string
	Type        Type
	Description string
}

// String serializes the name back to its slash-joined form.
func (n Name) String() string {
	s := n.Version.String() + "/" + n.Owner + "/" + string(n.Type)
	if n.Description != "" {
		s += "/" + n.Description
	}
	return s
}

// IsRelease reports whether n is a release branch.
func (n Name) IsRelease() bool {
	return n.Type == TypeRelease
}

// Compare orders names by version, owner, type, then description.
func (n Name) Compare(o Name) int {
	if c := n.Version.Compare(o.Version); c != 0 {
		return c
	}
	if c := strings.Compare(n.Owner, o.Owner); c != 0 {
		return c
	}
	if c := strings.Compare(string(n.Type), string(o.Type)); c != 0 {
		return c
	}
	return strings.Compare(n.Description, o.Description)
}

// ReleaseName returns the release branch name for version and owner.
func ReleaseName(v Version, owner string) Name {
	return Name{Version: v, Owner: owner, Type: TypeRelease}
}
