package tree

import (
	"strings"
)

// DefaultHashLength is the number of hash characters shown per node.
const DefaultHashLength = 7

// RenderOptions tunes the text output.
type RenderOptions struct {
	HashLength int
}

// Render draws the forest depth-first, one branch per line.
//
// Each branch appears exactly once, at its position in the tree. A node whose
// tip equals its parent's tip is printed without a hash, so a commit shared by
// several branches is only stated where it first appears.
func Render(f *Forest, opts RenderOptions) string {
	if f == nil || f.Root == nil {
		return ""
	}
	if opts.HashLength <= 0 {
		opts.HashLength = DefaultHashLength
	}

	var b strings.Builder
	seen := map[string]bool{}
	writeNode(&b, f.Root, "", "", opts, seen)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, prefix, childPrefix string, opts RenderOptions, seen map[string]bool) {
	if seen[n.Branch.Name] {
		return
	}
	seen[n.Branch.Name] = true

	b.WriteString(prefix)
	b.WriteString(n.Branch.Name)
	switch {
	case n.Missing:
		b.WriteString(" [missing]")
	case n.Status != StatusSameAsParent:
		b.WriteString(" (")
		b.WriteString(n.Branch.Tip.Short(opts.HashLength))
		b.WriteString(")")
	}
	if n.Status == StatusMerged {
		b.WriteString(" [merged]")
	}
	if n.Orphaned {
		b.WriteString(" [orphaned]")
	}
	b.WriteString("\n")

	for i, c := range n.Children {
		if i == len(n.Children)-1 {
			writeNode(b, c, childPrefix+"└── ", childPrefix+"    ", opts, seen)
		} else {
			writeNode(b, c, childPrefix+"├── ", childPrefix+"│   ", opts, seen)
		}
	}
}
