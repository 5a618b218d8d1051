package tree

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree/pkg/domain"
)

// Snapshot describes the subtree rooted at n. Attributes exclude id and class, which have
// their own fields.
func (n *Node) Snapshot() (domain.NodeSpec, error) {
	classes, err := n.view.Classes()
	if err != nil {
		return domain.NodeSpec{}, fmt.Errorf("snapshot %q: %w", n.id, err)
	}
	names, err := n.view.AttributeNames()
	if err != nil {
		return domain.NodeSpec{}, fmt.Errorf("snapshot %q: %w", n.id, err)
	}

	spec := domain.NodeSpec{
		ID:      n.id,
		Kind:    kindOf(classes),
		Tag:     n.view.LocalName(),
		Classes: classes,
	}
	if ns := n.view.NamespaceURI(); ns != domain.NamespaceHTML {
		spec.Namespace = ns
	}

	for _, name := range names {
		if isID(name) || strings.EqualFold(name, "class") {
			continue
		}
		value, ok, err := n.attribute(name)
		if err != nil {
			return domain.NodeSpec{}, fmt.Errorf("snapshot %q: %w", n.id, err)
		}
		if !ok {
			continue
		}
		if spec.Attributes == nil {
			spec.Attributes = make(map[string]string)
		}
		spec.Attributes[name] = value
	}

	for _, item := range n.items.nodes() {
		child, err := item.Snapshot()
		if err != nil {
			return domain.NodeSpec{}, err
		}
		spec.Children = append(spec.Children, child)
	}
	return spec, nil
}

// attribute reads a name as listed by AttributeNames, where namespaced attributes
// come back as "prefix:local".
func (n *Node) attribute(name string) (string, bool, error) {
	value, ok, err := n.view.Attribute(name)
	if err != nil || ok {
		return value, ok, err
	}
	prefix, local, found := strings.Cut(name, ":")
	if !found {
		return "", false, nil
	}
	ns, known := domain.AttributeNamespace(prefix)
	if !known {
		return "", false, nil
	}
	return n.view.AttributeNS(ns, local)
}

func kindOf(classes []string) string {
	for _, c := range classes {
		switch c {
		case domain.ClassWidget:
			return domain.KindWidget
		case domain.ClassOptions:
			return domain.KindOptions
		}
	}
	return ""
}
