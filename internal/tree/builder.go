// Package tree builds the branch forest from the naming convention and
// renders it as indented text.
package tree

import (
	"context"
	"fmt"
	"sort"
	"strings"

	branchdomain "github.com/ryangerardwilson/gitguru/internal/branch/domain"
	gitapp "github.com/ryangerardwilson/gitguru/internal/git/application"
	gitdomain "github.com/ryangerardwilson/gitguru/internal/git/domain"
	"github.com/ryangerardwilson/gitguru/internal/log"
)

// Status describes how a node's tip relates to its parent's tip.
type Status string

const (
	// StatusDiverged means the branch has commits its parent does not.
	StatusDiverged Status = "diverged"
	// StatusSameAsParent means the branch tip equals its parent's tip.
	StatusSameAsParent Status = "same-as-parent"
	// StatusMerged means the branch tip is a strict ancestor of its parent's tip.
	StatusMerged Status = "merged"
)

// Node is one branch in the forest.
type Node struct {
	Branch   gitdomain.Branch
	Name     *branchdomain.Name // nil for trunk and for names outside the convention
	Status   Status             // empty for the root
	Orphaned bool               // attached to trunk because its convention parent is missing
	Missing  bool               // placeholder root: the repository has no trunk branch
	Reason   string             // why the node is orphaned
	Children []*Node
}

// IsTrunk reports whether n is the root trunk node.
func (n *Node) IsTrunk() bool {
	return n.Branch.Name == branchdomain.TrunkName
}

// Forest is the branch tree rooted at trunk.
type Forest struct {
	Root *Node
}

// Walk visits every node depth-first in sibling order.
func (f *Forest) Walk(fn func(n *Node, depth int)) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	if f != nil && f.Root != nil {
		walk(f.Root, 0)
	}
}

// Find returns the node for branch name, or nil.
func (f *Forest) Find(name string) *Node {
	var found *Node
	f.Walk(func(n *Node, _ int) {
		if found == nil && n.Branch.Name == name {
			found = n
		}
	})
	return found
}

// Len returns the number of nodes.
func (f *Forest) Len() int {
	count := 0
	f.Walk(func(*Node, int) { count++ })
	return count
}

// Builder combines the convention with ancestry answers to build a Forest.
type Builder struct {
	policy   branchdomain.Policy
	ancestry gitapp.AncestryReader
}

// NewBuilder returns a Builder. ancestry should be scoped to one invocation.
func NewBuilder(policy branchdomain.Policy, ancestry gitapp.AncestryReader) *Builder {
	return &Builder{policy: policy, ancestry: ancestry}
}

type candidate struct {
	branch gitdomain.Branch
	name   *branchdomain.Name
	err    error
}

// Build arranges branches under trunk.
//
// Releases and hotfixes hang off trunk, features and bugfixes off the release
// of their version. A branch whose name breaks the convention, or whose
// parent is missing, is attached to trunk and marked orphaned instead of
// failing the build. Without a trunk branch the root is a Missing placeholder
// and everything attached to it is orphaned. Siblings are ordered by name (version, owner, type,
// description) and then by creation order. Ancestry only decides each node's
// Status, never the shape of the tree.
func (b *Builder) Build(ctx context.Context, branches []gitdomain.Branch) (*Forest, error) {
	var (
		trunk      *gitdomain.Branch
		candidates []candidate
		names      []branchdomain.Name
	)
	for i := range branches {
		br := branches[i]
		if br.Name == branchdomain.TrunkName {
			trunk = &br
			continue
		}
		c := candidate{branch: br}
		n, err := b.policy.Grammar().Parse(br.Name)
		if err != nil {
			c.err = err
		} else {
			c.name = &n
			names = append(names, n)
		}
		candidates = append(candidates, c)
	}
	var root *Node
	if trunk == nil {
		log.Warn(log.CatTree, "Trunk branch is missing", "trunk", branchdomain.TrunkName)
		root = &Node{Branch: gitdomain.Branch{Name: branchdomain.TrunkName}, Missing: true}
	} else {
		root = &Node{Branch: *trunk}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return lessCandidate(candidates[i], candidates[j])
	})

	nodes := map[string]*Node{root.Branch.Name: root}
	for _, c := range candidates {
		nodes[c.branch.Name] = &Node{Branch: c.branch, Name: c.name}
	}

	for _, c := range candidates {
		node := nodes[c.branch.Name]
		parent := root
		switch {
		case c.err != nil:
			node.Orphaned, node.Reason = true, c.err.Error()
		default:
			ref, err := b.policy.ExpectedParent(*c.name, names)
			if err != nil {
				node.Orphaned, node.Reason = true, err.Error()
				break
			}
			if p, ok := nodes[ref.String()]; ok {
				parent = p
			} else {
				node.Orphaned, node.Reason = true, fmt.Sprintf("parent %s is missing", ref)
			}
		}
		if parent == root && root.Missing && !node.Orphaned {
			node.Orphaned, node.Reason = true, fmt.Sprintf("trunk %s is missing", branchdomain.TrunkName)
		}
		if node.Orphaned {
			log.Debug(log.CatTree, "Attaching orphaned branch to trunk", "branch", c.branch.Name, "reason", node.Reason)
		}
		parent.Children = append(parent.Children, node)
	}

	forest := &Forest{Root: root}
	if err := b.classify(ctx, root); err != nil {
		return nil, err
	}
	return forest, nil
}

// classify sets the Status of every descendant of parent.
func (b *Builder) classify(ctx context.Context, parent *Node) error {
	for _, child := range parent.Children {
		switch {
		case parent.Missing:
			child.Status = StatusDiverged
		case child.Branch.Tip == parent.Branch.Tip:
			child.Status = StatusSameAsParent
		default:
			merged, err := b.ancestry.IsAncestorOrEqual(ctx, child.Branch.Tip, parent.Branch.Tip)
			if err != nil {
				return fmt.Errorf("checking ancestry of %s: %w", child.Branch.Name, err)
			}
			if merged {
				child.Status = StatusMerged
			} else {
				child.Status = StatusDiverged
			}
		}
		if err := b.classify(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// lessCandidate orders convention names before anything else, then by raw
// name, then by creation order.
func lessCandidate(a, b candidate) bool {
	switch {
	case a.name != nil && b.name != nil:
		if c := a.name.Compare(*b.name); c != 0 {
			return c < 0
		}
	case a.name != nil:
		return true
	case b.name != nil:
		return false
	default:
		if c := strings.Compare(a.branch.Name, b.branch.Name); c != 0 {
			return c < 0
		}
	}
	return a.branch.Order < b.branch.Order
}
