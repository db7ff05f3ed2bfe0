package domain

import "fmt"

// TrunkName is the root branch every release and hotfix descends from.
const TrunkName = "main"

// Ref is either the trunk branch or a convention Name.
type Ref struct {
	name  Name
	trunk bool
}

// TrunkRef returns the trunk reference.
func TrunkRef() Ref {
	return Ref{trunk: true}
}

// NameRef wraps a convention Name.
func NameRef(n Name) Ref {
	return Ref{name: n}
}

// IsTrunk reports whether r is the trunk branch.
func (r Ref) IsTrunk() bool {
	return r.trunk
}

// Name returns the convention name, or false for trunk.
func (r Ref) Name() (Name, bool) {
	return r.name, !r.trunk
}

// String returns the branch identifier.
func (r Ref) String() string {
	if r.trunk {
		return TrunkName
	}
	return r.name.String()
}

// Policy derives the expected parent of a branch from the convention.
type Policy struct {
	grammar Grammar
}

// NewPolicy returns a Policy for the given privileged hotfix owner.
func NewPolicy(privilegedOwner string) Policy {
	return Policy{grammar: NewGrammar(privilegedOwner)}
}

// Grammar returns the grammar the policy validates names with.
func (p Policy) Grammar() Grammar {
	return p.grammar
}

// IsPrivilegedHotfix reports whether n is a hotfix owned by the privileged owner.
func (p Policy) IsPrivilegedHotfix(n Name) bool {
	return n.Type == TypeHotfix && p.grammar.IsPrivileged(n.Owner)
}

// PrivilegedHotfix returns the privileged hotfix name for version.
func (p Policy) PrivilegedHotfix(v Version) Name {
	return Name{Version: v, Owner: p.grammar.PrivilegedOwner, Type: TypeHotfix}
}

// ExpectedParent returns the branch n should be created from and merged back into.
//
// Releases and hotfixes (privileged or not) descend from trunk. Features and
// bugfixes descend from the release branch of the same version; when several
// owners have a release for that version the one sharing n's owner wins,
// otherwise the lowest owner. Without any matching release the result is
// NoMatchingRelease.
func (p Policy) ExpectedParent(n Name, all []Name) (Ref, error) {
	switch n.Type {
	case TypeRelease, TypeHotfix:
		return TrunkRef(), nil
	}

	var (
		best  Name
		found bool
	)
	for _, c := range all {
		if !c.IsRelease() || c.Version != n.Version {
			continue
		}
		if c.Owner == n.Owner {
			return NameRef(c), nil
		}
		if !found || c.Compare(best) < 0 {
			best, found = c, true
		}
	}
	if !found {
		return Ref{}, NewError(KindNoMatchingRelease, n.String(),
			fmt.Sprintf("no release branch for version %s", n.Version))
	}
	return NameRef(best), nil
}
