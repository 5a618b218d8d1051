package dsl

import "github.com/aretw0/itemtree/pkg/domain"

// NodeBuilder provides a fluent API for configuring an item.
type NodeBuilder struct {
	spec    domain.NodeSpec
	parent  string
	builder *Builder
}

// Widget marks the item as the root section of a user widget.
func (n *NodeBuilder) Widget() *NodeBuilder {
	n.spec.Kind = domain.KindWidget
	return n
}

// Options marks the item as the options panel of a widget.
func (n *NodeBuilder) Options() *NodeBuilder {
	n.spec.Kind = domain.KindOptions
	return n
}

// Section makes the item a plain div section.
func (n *NodeBuilder) Section() *NodeBuilder {
	n.spec.Kind = domain.KindSection
	return n
}

// Tag sets the element tag. It is ignored by the section kinds, which are always divs.
func (n *NodeBuilder) Tag(tag string) *NodeBuilder {
	n.spec.Tag = tag
	return n
}

// Namespace creates the element in a namespace other than HTML.
func (n *NodeBuilder) Namespace(uri string) *NodeBuilder {
	n.spec.Namespace = uri
	return n
}

// Class adds classification tags.
func (n *NodeBuilder) Class(names ...string) *NodeBuilder {
	n.spec.Classes = append(n.spec.Classes, names...)
	return n
}

// Attr sets an attribute. Namespaced attributes use the "prefix:local" form, e.g. "xlink:href".
func (n *NodeBuilder) Attr(name, value string) *NodeBuilder {
	if n.spec.Attributes == nil {
		n.spec.Attributes = make(map[string]string)
	}
	n.spec.Attributes[name] = value
	return n
}

// In attaches the item under the item parentID. The last call wins.
func (n *NodeBuilder) In(parentID string) *NodeBuilder {
	n.parent = parentID
	return n
}

// Spec returns the item on its own, without children.
func (n *NodeBuilder) Spec() domain.NodeSpec {
	return n.spec
}
