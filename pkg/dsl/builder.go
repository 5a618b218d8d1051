package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/layout"
	"github.com/aretw0/itemtree/pkg/ports"
	"github.com/aretw0/itemtree/pkg/tree"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Builder manages the layout construction.
type Builder struct {
	nodes *orderedmap.OrderedMap[string, *NodeBuilder]
}

// New creates a new layout builder.
func New() *Builder {
	return &Builder{
		nodes: orderedmap.New[string, *NodeBuilder](),
	}
}

// Add creates a new item.
// If the item already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes.Get(id); ok {
		return nb
	}
	nb := &NodeBuilder{
		spec:    domain.NodeSpec{ID: id},
		builder: b,
	}
	b.nodes.Set(id, nb)
	return nb
}

// Spec assembles the items into a single validated tree description.
// Exactly one item must have no parent.
func (b *Builder) Spec() (domain.NodeSpec, error) {
	var roots []string
	children := make(map[string][]string)
	for pair := b.nodes.Oldest(); pair != nil; pair = pair.Next() {
		id, nb := pair.Key, pair.Value
		if id == "" {
			return domain.NodeSpec{}, fmt.Errorf("item without id: %w", domain.ErrInvalidArgument)
		}
		if nb.parent == "" {
			roots = append(roots, id)
			continue
		}
		if _, ok := b.nodes.Get(nb.parent); !ok {
			return domain.NodeSpec{}, &domain.NotFoundError{Op: "attach " + id, ID: nb.parent}
		}
		children[nb.parent] = append(children[nb.parent], id)
	}
	if len(roots) != 1 {
		return domain.NodeSpec{}, fmt.Errorf("need exactly one root, got [%s]: %w", strings.Join(roots, " "), domain.ErrInvalidArgument)
	}

	placed := make(map[string]bool, b.nodes.Len())
	var assemble func(id string) domain.NodeSpec
	assemble = func(id string) domain.NodeSpec {
		placed[id] = true
		nb, _ := b.nodes.Get(id)
		spec := nb.spec
		spec.Children = nil
		for _, c := range children[id] {
			spec.Children = append(spec.Children, assemble(c))
		}
		return spec
	}
	spec := assemble(roots[0])

	// Whatever the root cannot reach hangs off a parent loop.
	if len(placed) != b.nodes.Len() {
		var stray []string
		for pair := b.nodes.Oldest(); pair != nil; pair = pair.Next() {
			if !placed[pair.Key] {
				stray = append(stray, pair.Key)
			}
		}
		return domain.NodeSpec{}, fmt.Errorf("items [%s] are their own ancestors: %w", strings.Join(stray, " "), domain.ErrCycle)
	}

	if err := layout.Validate(spec); err != nil {
		return domain.NodeSpec{}, err
	}
	return spec, nil
}

// Build assembles the layout and creates its tree in doc.
func (b *Builder) Build(doc ports.Document, opts ...tree.Option) (*tree.Node, error) {
	spec, err := b.Spec()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble layout: %w", err)
	}
	return layout.Build(doc, spec, opts...)
}
