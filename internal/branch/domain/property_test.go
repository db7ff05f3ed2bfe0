package domain

import (
	"testing"

	"pgregory.net/rapid"
)

// ============================================================================
// Property-Based Tests for the naming convention
// ============================================================================

const testPrivilegedOwner = "cto"

func versionGen() *rapid.Generator[Version] {
	return rapid.Custom(func(t *rapid.T) Version {
		return Version{
			Major: rapid.Uint64Range(0, 999).Draw(t, "major"),
			Minor: rapid.Uint64Range(0, 999).Draw(t, "minor"),
			Patch: rapid.Uint64Range(0, 999).Draw(t, "patch"),
		}
	})
}

func ownerGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z0-9]{1,8}`).Filter(func(s string) bool {
		return s != testPrivilegedOwner
	})
}

func descriptionGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z0-9]{1,6}(-[a-z0-9]{1,6}){0,3}`)
}

// nameGen draws any valid name, including privileged hotfixes.
func nameGen() *rapid.Generator[Name] {
	return rapid.Custom(func(t *rapid.T) Name {
		n := Name{
			Version: versionGen().Draw(t, "version"),
			Owner:   ownerGen().Draw(t, "owner"),
			Type:    rapid.SampledFrom(Types()).Draw(t, "type"),
		}
		switch n.Type {
		case TypeRelease:
		case TypeHotfix:
			if rapid.Bool().Draw(t, "privileged") {
				n.Owner = testPrivilegedOwner
				break
			}
			n.Description = descriptionGen().Draw(t, "description")
		default:
			n.Description = descriptionGen().Draw(t, "description")
		}
		return n
	})
}

// TestProperty_ParseRoundTrip verifies parse followed by serialize is the identity.
func TestProperty_ParseRoundTrip(t *testing.T) {
	g := NewGrammar(testPrivilegedOwner)
	rapid.Check(t, func(t *rapid.T) {
		n := nameGen().Draw(t, "name")
		raw := n.String()

		parsed, err := g.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", raw, err)
		}
		if parsed != n {
			t.Fatalf("Parse(%q) = %+v, want %+v", raw, parsed, n)
		}
		if parsed.String() != raw {
			t.Fatalf("round trip changed %q into %q", raw, parsed.String())
		}
	})
}

// TestProperty_ReleaseRejectsDescription verifies any fourth segment on a release fails.
func TestProperty_ReleaseRejectsDescription(t *testing.T) {
	g := NewGrammar(testPrivilegedOwner)
	rapid.Check(t, func(t *rapid.T) {
		release := ReleaseName(versionGen().Draw(t, "version"), ownerGen().Draw(t, "owner"))
		segment := rapid.StringMatching(`[a-z0-9-]{0,10}`).Draw(t, "segment")

		_, err := g.Parse(release.String() + "/" + segment)
		kind, ok := KindOf(err)
		if !ok || kind != KindUnexpectedDescription {
			t.Fatalf("Parse(%q/%q) error = %v, want UnexpectedDescription", release, segment, err)
		}
	})
}

// TestProperty_FeatureParentIsMatchingRelease verifies feature and bugfix
// branches resolve to a release of their own version exactly when one exists.
func TestProperty_FeatureParentIsMatchingRelease(t *testing.T) {
	p := NewPolicy(testPrivilegedOwner)
	rapid.Check(t, func(t *rapid.T) {
		v := versionGen().Draw(t, "version")
		n := Name{
			Version:     v,
			Owner:       ownerGen().Draw(t, "owner"),
			Type:        rapid.SampledFrom([]Type{TypeFeature, TypeBugfix}).Draw(t, "type"),
			Description: descriptionGen().Draw(t, "description"),
		}
		all := rapid.SliceOf(nameGen()).Draw(t, "all")

		hasRelease := false
		for _, c := range all {
			if c.IsRelease() && c.Version == v {
				hasRelease = true
			}
		}

		parent, err := p.ExpectedParent(n, all)
		if !hasRelease {
			if kind, _ := KindOf(err); kind != KindNoMatchingRelease {
				t.Fatalf("expected NoMatchingRelease, got parent=%v err=%v", parent, err)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pn, ok := parent.Name()
		if !ok || !pn.IsRelease() || pn.Version != v {
			t.Fatalf("parent %v is not the release of version %v", parent, v)
		}
	})
}
