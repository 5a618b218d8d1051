package domain

// NodeSpec represents a node and its subtree in declarative form.
// It is read from layout files and produced by snapshots of live trees.
type NodeSpec struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Kind      string `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind"`
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty" mapstructure:"tag"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" mapstructure:"namespace"`

	Classes    []string          `json:"classes,omitempty" yaml:"classes,omitempty" mapstructure:"classes"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty" mapstructure:"attributes"`

	Children []NodeSpec `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}

// HasClass reports whether the spec carries the given class.
func (s NodeSpec) HasClass(name string) bool {
	for _, c := range s.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Walk visits s and its descendants depth-first, passing the path of ids from s.
// Returning false from fn skips the children of that node.
func (s NodeSpec) Walk(fn func(path []string, spec NodeSpec) bool) {
	s.walk(nil, fn)
}

func (s NodeSpec) walk(prefix []string, fn func([]string, NodeSpec) bool) {
	path := append(append([]string(nil), prefix...), s.ID)
	if !fn(path, s) {
		return
	}
	for _, c := range s.Children {
		c.walk(path, fn)
	}
}
