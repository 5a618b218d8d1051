package layout

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/ports"
	"github.com/aretw0/itemtree/pkg/tree"
)

// Build creates the tree described by spec. opts apply to every node built.
func Build(doc ports.Document, spec domain.NodeSpec, opts ...tree.Option) (*tree.Node, error) {
	n, err := buildNode(doc, spec, opts)
	if err != nil {
		return nil, err
	}
	for _, child := range spec.Children {
		c, err := Build(doc, child, opts...)
		if err != nil {
			return nil, err
		}
		if _, err := n.Add(c); err != nil {
			return nil, fmt.Errorf("add %q to %q: %w", c.ID(), n.ID(), err)
		}
	}
	return n, nil
}

func buildNode(doc ports.Document, spec domain.NodeSpec, opts []tree.Option) (*tree.Node, error) {
	var (
		n   *tree.Node
		err error
	)
	nodeOpts := append([]tree.Option{tree.WithClasses(spec.Classes...)}, opts...)
	switch spec.Kind {
	case domain.KindWidget:
		n, err = tree.NewWidget(doc, spec.ID, nodeOpts...)
	case domain.KindOptions:
		n, err = tree.NewOptions(doc, spec.ID, nodeOpts...)
	case domain.KindSection:
		n, err = tree.NewSection(doc, spec.ID, "", nodeOpts...)
	default:
		tag := spec.Tag
		if tag == "" {
			tag = domain.SectionTag
		}
		if spec.Namespace != "" {
			nodeOpts = append(nodeOpts, tree.WithNamespace(spec.Namespace))
		}
		n, err = tree.New(doc, tag, append(nodeOpts, tree.WithID(spec.ID))...)
	}
	if err != nil {
		return nil, fmt.Errorf("build %q: %w", spec.ID, err)
	}

	for name, value := range spec.Attributes {
		if err := setAttribute(n, name, value); err != nil {
			return nil, fmt.Errorf("build %q: %w", spec.ID, err)
		}
	}
	return n, nil
}

// setAttribute understands the "prefix:local" form used by snapshots for namespaced attributes.
func setAttribute(n *tree.Node, name, value string) error {
	if prefix, _, found := strings.Cut(name, ":"); found {
		if ns, ok := domain.AttributeNamespace(prefix); ok {
			return n.Attrs().SetNS(ns, name, value)
		}
	}
	return n.Attrs().Set(name, value)
}
