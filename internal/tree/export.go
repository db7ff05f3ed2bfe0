package tree

import (
	"gopkg.in/yaml.v3"
)

type exportNode struct {
	Name     string       `yaml:"name"`
	Commit   string       `yaml:"commit"`
	Type     string       `yaml:"type,omitempty"`
	Status   string       `yaml:"status,omitempty"`
	Orphaned bool         `yaml:"orphaned,omitempty"`
	Missing  bool         `yaml:"missing,omitempty"`
	Reason   string       `yaml:"reason,omitempty"`
	Children []exportNode `yaml:"children,omitempty"`
}

func toExport(n *Node) exportNode {
	e := exportNode{
		Name:     n.Branch.Name,
		Commit:   string(n.Branch.Tip),
		Status:   string(n.Status),
		Orphaned: n.Orphaned,
		Missing:  n.Missing,
		Reason:   n.Reason,
	}
	if n.Name != nil {
		e.Type = string(n.Name.Type)
	}
	for _, c := range n.Children {
		e.Children = append(e.Children, toExport(c))
	}
	return e
}

// MarshalYAML encodes the forest as nested YAML nodes for scripting.
func MarshalYAML(f *Forest) ([]byte, error) {
	if f == nil || f.Root == nil {
		return yaml.Marshal(nil)
	}
	return yaml.Marshal(toExport(f.Root))
}
