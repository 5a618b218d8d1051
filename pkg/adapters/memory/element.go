package memory

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/ports"
	"golang.org/x/net/html"
)

// Element implements ports.View over a single *html.Node of type ElementNode.
type Element struct {
	doc  *Document
	node *html.Node
}

var (
	_ ports.View     = (*Element)(nil)
	_ ports.Renderer = (*Element)(nil)
)

// Node returns the underlying html node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Key is derived from the node address, which is stable for as long as the node is reachable.
func (e *Element) Key() string {
	return fmt.Sprintf("%p", e.node)
}

func (e *Element) ID() string {
	id, _ := e.attr("", "id")
	return id
}

func (e *Element) SetID(id string) error {
	e.setAttr("", "id", id)
	return nil
}

func (e *Element) TagName() string {
	if e.node.Namespace == "" {
		return strings.ToUpper(e.node.Data)
	}
	return e.node.Data
}

func (e *Element) LocalName() string {
	return e.node.Data
}

func (e *Element) NamespaceURI() string {
	return namespaceURI(e.node.Namespace)
}

func (e *Element) BaseURI() string {
	return e.doc.baseURI
}

// Structure

func (e *Element) AppendChild(child ports.View) error {
	c, err := e.adopt(child)
	if err != nil {
		return err
	}
	detach(c.node)
	e.node.AppendChild(c.node)
	return nil
}

func (e *Element) InsertBefore(child, ref ports.View) error {
	r, err := e.ownChild(ref)
	if err != nil {
		return err
	}
	c, err := e.adopt(child)
	if err != nil {
		return err
	}
	if c.node == r.node {
		return nil
	}
	detach(c.node)
	e.node.InsertBefore(c.node, r.node)
	return nil
}

func (e *Element) ReplaceChild(newChild, oldChild ports.View) error {
	o, err := e.ownChild(oldChild)
	if err != nil {
		return err
	}
	n, err := e.adopt(newChild)
	if err != nil {
		return err
	}
	if n.node == o.node {
		return nil
	}
	detach(n.node)
	e.node.InsertBefore(n.node, o.node)
	e.node.RemoveChild(o.node)
	return nil
}

func (e *Element) RemoveChild(child ports.View) error {
	c, err := e.ownChild(child)
	if err != nil {
		return err
	}
	e.node.RemoveChild(c.node)
	return nil
}

func (e *Element) Children() ([]ports.View, error) {
	var children []ports.View
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, e.doc.Wrap(c))
		}
	}
	return children, nil
}

// AppendHTML parses fragment in the context of this element and appends the result.
// The appended elements are not owned by any Node.
func (e *Element) AppendHTML(fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), e.node)
	if err != nil {
		return fmt.Errorf("append html: %w", err)
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// OuterHTML renders the element and its subtree.
func (e *Element) OuterHTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return "", fmt.Errorf("render %s: %w", e.node.Data, err)
	}
	return buf.String(), nil
}

// adopt validates a view about to be inserted under e.
func (e *Element) adopt(v ports.View) (*Element, error) {
	c, ok := v.(*Element)
	if !ok || c == nil {
		return nil, fmt.Errorf("memory: %T: %w", v, domain.ErrForeignView)
	}
	for a := e.node; a != nil; a = a.Parent {
		if a == c.node {
			return nil, fmt.Errorf("memory: insert %s into its own subtree: %w", c.node.Data, domain.ErrCycle)
		}
	}
	return c, nil
}

func (e *Element) ownChild(v ports.View) (*Element, error) {
	c, ok := v.(*Element)
	if !ok || c == nil {
		return nil, fmt.Errorf("memory: %T: %w", v, domain.ErrForeignView)
	}
	if c.node.Parent != e.node {
		return nil, fmt.Errorf("memory: %s under %s: %w", c.node.Data, e.node.Data, domain.ErrNotChild)
	}
	return c, nil
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Attributes

func (e *Element) Attribute(name string) (string, bool, error) {
	v, ok := e.attr("", e.normalize(name))
	return v, ok, nil
}

func (e *Element) AttributeNS(namespace, localName string) (string, bool, error) {
	if namespace == "" {
		return e.Attribute(localName)
	}
	prefix, ok := e.doc.lookupPrefix(namespace)
	if !ok {
		return "", false, nil
	}
	v, ok := e.attr(prefix, localName)
	return v, ok, nil
}

func (e *Element) SetAttribute(name, value string) error {
	if name == "" {
		return fmt.Errorf("set attribute: empty name: %w", domain.ErrInvalidArgument)
	}
	e.setAttr("", e.normalize(name), value)
	return nil
}

func (e *Element) SetAttributeNS(namespace, qualifiedName, value string) error {
	if namespace == "" {
		return e.SetAttribute(qualifiedName, value)
	}
	local := qualifiedName
	if i := strings.IndexByte(qualifiedName, ':'); i >= 0 {
		local = qualifiedName[i+1:]
	}
	if local == "" {
		return fmt.Errorf("set attribute: empty name: %w", domain.ErrInvalidArgument)
	}
	e.setAttr(e.doc.prefixFor(namespace, qualifiedName), local, value)
	return nil
}

func (e *Element) RemoveAttribute(name string) error {
	e.removeAttr("", e.normalize(name))
	return nil
}

func (e *Element) RemoveAttributeNS(namespace, localName string) error {
	if namespace == "" {
		return e.RemoveAttribute(localName)
	}
	if prefix, ok := e.doc.lookupPrefix(namespace); ok {
		e.removeAttr(prefix, localName)
	}
	return nil
}

func (e *Element) AttributeNames() ([]string, error) {
	names := make([]string, 0, len(e.node.Attr))
	for _, a := range e.node.Attr {
		if a.Namespace != "" {
			names = append(names, a.Namespace+":"+a.Key)
			continue
		}
		names = append(names, a.Key)
	}
	return names, nil
}

// HTML attribute names are case-insensitive.
func (e *Element) normalize(name string) string {
	if e.node.Namespace == "" {
		return strings.ToLower(name)
	}
	return name
}

func (e *Element) attr(namespace, key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == namespace && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) setAttr(namespace, key, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == namespace && a.Key == key {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Namespace: namespace, Key: key, Val: value})
}

func (e *Element) removeAttr(namespace, key string) {
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Namespace == namespace && a.Key == key
	})
}

// ClassList

func (e *Element) Classes() ([]string, error) {
	v, _ := e.attr("", "class")
	return uniqueFields(v), nil
}

func (e *Element) AddClass(names ...string) error {
	classes, _ := e.Classes()
	for _, n := range names {
		if err := validClass(n); err != nil {
			return err
		}
		if !slices.Contains(classes, n) {
			classes = append(classes, n)
		}
	}
	e.setAttr("", "class", strings.Join(classes, " "))
	return nil
}

func (e *Element) RemoveClass(names ...string) error {
	classes, _ := e.Classes()
	if len(classes) == 0 {
		return nil
	}
	classes = slices.DeleteFunc(classes, func(c string) bool {
		return slices.Contains(names, c)
	})
	e.setAttr("", "class", strings.Join(classes, " "))
	return nil
}

func validClass(name string) error {
	if name == "" || strings.ContainsAny(name, " \t\n\r\f") {
		return fmt.Errorf("class %q: %w", name, domain.ErrInvalidArgument)
	}
	return nil
}

func uniqueFields(s string) []string {
	var out []string
	for _, f := range strings.Fields(s) {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// Selector

func (e *Element) QuerySelector(selector string) (ports.View, error) {
	var found *html.Node
	err := e.query(selector, func(n *html.Node) bool {
		found = n
		return false
	})
	if err != nil || found == nil {
		return nil, err
	}
	return e.doc.Wrap(found), nil
}

func (e *Element) QuerySelectorAll(selector string) ([]ports.View, error) {
	var matches []ports.View
	err := e.query(selector, func(n *html.Node) bool {
		matches = append(matches, e.doc.Wrap(n))
		return true
	})
	return matches, err
}

// query visits matching descendants in document order until visit returns false.
func (e *Element) query(selector string, visit func(*html.Node) bool) error {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return fmt.Errorf("selector %q: %v: %w", selector, err, domain.ErrInvalidArgument)
	}
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if sel.Match(c) && !visit(c) {
				return false
			}
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(e.node)
	return nil
}
