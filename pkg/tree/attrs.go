package tree

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree/pkg/ports"
)

// Attrs reads and writes the attributes of a node's view.
// Writes to "id" go through Node.SetID so the parent's keying stays consistent.
type Attrs struct {
	node *Node
}

func isID(name string) bool {
	return strings.EqualFold(name, "id")
}

// Names returns the attribute names present on the view.
func (a *Attrs) Names() ([]string, error) {
	return a.node.view.AttributeNames()
}

// HasAny reports whether the view carries at least one attribute.
func (a *Attrs) HasAny() (bool, error) {
	names, err := a.Names()
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

func (a *Attrs) Has(name string) (bool, error) {
	_, ok, err := a.node.view.Attribute(name)
	return ok, err
}

func (a *Attrs) HasNS(namespace, localName string) (bool, error) {
	_, ok, err := a.node.view.AttributeNS(namespace, localName)
	return ok, err
}

// Get returns the attribute value and whether it is present.
func (a *Attrs) Get(name string) (string, bool, error) {
	return a.node.view.Attribute(name)
}

func (a *Attrs) GetNS(namespace, localName string) (string, bool, error) {
	return a.node.view.AttributeNS(namespace, localName)
}

// Set writes an attribute. Setting "id" renames the node.
func (a *Attrs) Set(name, value string) error {
	if isID(name) {
		return a.node.SetID(value)
	}
	if err := a.node.view.SetAttribute(name, value); err != nil {
		return fmt.Errorf("set %s on %q: %w", name, a.node.id, err)
	}
	return nil
}

func (a *Attrs) SetNS(namespace, qualifiedName, value string) error {
	if namespace == "" && isID(qualifiedName) {
		return a.node.SetID(value)
	}
	if err := a.node.view.SetAttributeNS(namespace, qualifiedName, value); err != nil {
		return fmt.Errorf("set %s on %q: %w", qualifiedName, a.node.id, err)
	}
	return nil
}

// Remove deletes an attribute. Removing "id" reverts the node to its auto-generated id.
func (a *Attrs) Remove(name string) error {
	if isID(name) {
		return a.node.SetID("")
	}
	return a.node.view.RemoveAttribute(name)
}

func (a *Attrs) RemoveNS(namespace, localName string) error {
	if namespace == "" && isID(localName) {
		return a.node.SetID("")
	}
	return a.node.view.RemoveAttributeNS(namespace, localName)
}

// Toggle removes a present attribute or adds it with an empty value, and reports whether
// it is present afterwards. A non-nil force pins the outcome instead of flipping.
func (a *Attrs) Toggle(name string, force *bool) (bool, error) {
	ok, err := a.Has(name)
	if err != nil {
		return false, err
	}
	want := !ok
	if force != nil {
		want = *force
	}
	switch {
	case want && !ok:
		err = a.Set(name, "")
	case !want && ok:
		err = a.Remove(name)
	}
	if err != nil {
		return ok, err
	}
	return want, nil
}

// ClassList manages the classification tags of a view.
type ClassList struct {
	view ports.View
}

// Values returns the tags in order, without duplicates.
func (c *ClassList) Values() ([]string, error) {
	return c.view.Classes()
}

func (c *ClassList) Contains(name string) (bool, error) {
	classes, err := c.view.Classes()
	if err != nil {
		return false, err
	}
	for _, cl := range classes {
		if cl == name {
			return true, nil
		}
	}
	return false, nil
}

func (c *ClassList) Add(names ...string) error {
	return c.view.AddClass(names...)
}

func (c *ClassList) Remove(names ...string) error {
	return c.view.RemoveClass(names...)
}

// Toggle flips one tag and reports whether it is present afterwards.
func (c *ClassList) Toggle(name string) (bool, error) {
	ok, err := c.Contains(name)
	if err != nil {
		return false, err
	}
	if ok {
		return false, c.Remove(name)
	}
	return true, c.Add(name)
}
