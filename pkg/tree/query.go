package tree

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree/pkg/domain"
)

// HasItem reports whether id names a direct child.
func (n *Node) HasItem(id string) bool {
	return n.items.has(id)
}

// Get returns the child at ordinal index, or nil when index is out of range.
func (n *Node) Get(index int) *Node {
	item, _ := n.items.at(index)
	return item
}

// GetByID returns the direct child with the given id, or nil.
func (n *Node) GetByID(id string) *Node {
	item, _ := n.items.get(id)
	return item
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return n.items.len()
}

// IDs returns the child ids in order.
func (n *Node) IDs() []string {
	return n.items.ids()
}

// Items returns the children in order.
func (n *Node) Items() []*Node {
	return n.items.nodes()
}

// IndexOf returns the ordinal position of the child id, or -1.
func (n *Node) IndexOf(id string) int {
	return n.items.indexOf(id)
}

// FindOne returns the Node owning the first descendant view matching selector.
// It returns nil when nothing matches or the first match belongs to no Node.
func (n *Node) FindOne(selector string) (*Node, error) {
	if err := checkSelector(selector); err != nil {
		return nil, err
	}
	v, err := n.view.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("find %q in %q: %w", selector, n.id, err)
	}
	if v == nil {
		return nil, nil
	}
	return n.index[v.Key()], nil
}

// FindAll returns the Nodes owning the descendant views matching selector, in document
// order. Matches that belong to no Node are dropped.
func (n *Node) FindAll(selector string) ([]*Node, error) {
	if err := checkSelector(selector); err != nil {
		return nil, err
	}
	views, err := n.view.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("find all %q in %q: %w", selector, n.id, err)
	}
	items := make([]*Node, 0, len(views))
	for _, v := range views {
		if item, ok := n.index[v.Key()]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func checkSelector(selector string) error {
	if strings.TrimSpace(selector) == "" {
		return fmt.Errorf("empty selector: %w", domain.ErrInvalidArgument)
	}
	return nil
}

// GetByClassName returns the direct children carrying at least one of the whitespace
// separated class names, in child order.
func (n *Node) GetByClassName(classNames string) ([]*Node, error) {
	names := strings.Fields(classNames)
	var matches []*Node
	if len(names) == 0 {
		return matches, nil
	}
	for _, item := range n.items.nodes() {
		classes, err := item.view.Classes()
		if err != nil {
			return nil, fmt.Errorf("classes of %q: %w", item.id, err)
		}
		if containsAny(classes, names) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// GetByTagName returns the direct children whose tag name equals qualifiedName exactly.
// HTML tag names are upper case, as in the DOM.
func (n *Node) GetByTagName(qualifiedName string) []*Node {
	var matches []*Node
	for _, item := range n.items.nodes() {
		if item.view.TagName() == qualifiedName {
			matches = append(matches, item)
		}
	}
	return matches
}

// GetByTagNameNS returns the direct children with the given namespace URI and local name.
func (n *Node) GetByTagNameNS(namespace, localName string) []*Node {
	var matches []*Node
	for _, item := range n.items.nodes() {
		if item.view.NamespaceURI() == namespace && item.view.LocalName() == localName {
			matches = append(matches, item)
		}
	}
	return matches
}
