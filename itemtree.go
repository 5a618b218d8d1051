package itemtree

import (
	"fmt"

	"github.com/aretw0/itemtree/pkg/adapters/memory"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/layout"
	"github.com/aretw0/itemtree/pkg/ports"
	"github.com/aretw0/itemtree/pkg/tree"
	"github.com/aretw0/itemtree/pkg/workspace"
)

// NewWorkspace creates a workspace of named trees.
// A nil document uses a fresh in-memory HTML document.
func NewWorkspace(doc ports.Document, opts ...workspace.Option) *workspace.Manager {
	if doc == nil {
		doc = memory.NewDocument()
	}
	return workspace.NewManager(doc, opts...)
}

// Build creates a detached tree from a layout in a fresh in-memory document.
func Build(spec domain.NodeSpec, opts ...tree.Option) (*tree.Node, error) {
	return layout.Build(memory.NewDocument(), spec, opts...)
}

// Render builds a layout in memory and returns the HTML of its root element.
func Render(spec domain.NodeSpec) (string, error) {
	root, err := Build(spec)
	if err != nil {
		return "", err
	}
	r, ok := root.View().(ports.Renderer)
	if !ok {
		return "", fmt.Errorf("render %s: view %T cannot render", root, root.View())
	}
	return r.OuterHTML()
}
