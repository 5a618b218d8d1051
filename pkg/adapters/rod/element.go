package rod

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/ports"
	"github.com/go-rod/rod"
	"github.com/google/uuid"
)

// keyProperty holds the element key on the DOM object itself.
const keyProperty = "__itemtreeKey"

// Element implements ports.View over a remote DOM element.
type Element struct {
	doc *Document
	el  *rod.Element
	key string
}

var (
	_ ports.View     = (*Element)(nil)
	_ ports.Renderer = (*Element)(nil)
)

// Remote returns the underlying rod element.
func (e *Element) Remote() *rod.Element {
	return e.el
}

// Key stamps the element with a uuid on first use. It returns "" when the page is gone,
// which tree.New and tree.Wrap reject.
func (e *Element) Key() string {
	if e.key != "" {
		return e.key
	}
	res, err := e.el.Eval(`(prop, fresh) => this[prop] || (this[prop] = fresh)`, keyProperty, uuid.NewString())
	if err != nil {
		return ""
	}
	e.key = res.Value.Str()
	return e.key
}

func (e *Element) ID() string {
	return e.str(`() => this.id`)
}

func (e *Element) SetID(id string) error {
	return e.call("set id", `(id) => { this.id = id }`, id)
}

func (e *Element) TagName() string {
	return e.str(`() => this.tagName`)
}

func (e *Element) LocalName() string {
	return e.str(`() => this.localName`)
}

func (e *Element) NamespaceURI() string {
	return e.str(`() => this.namespaceURI || ""`)
}

func (e *Element) BaseURI() string {
	return e.str(`() => this.baseURI`)
}

func (e *Element) str(js string) string {
	res, err := e.el.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *Element) call(op, js string, args ...interface{}) error {
	if _, err := e.el.Eval(js, args...); err != nil {
		return fmt.Errorf("rod: %s: %w", op, err)
	}
	return nil
}

func (e *Element) test(js string, args ...interface{}) (bool, error) {
	res, err := e.el.Eval(js, args...)
	if err != nil {
		return false, fmt.Errorf("rod: %w", err)
	}
	return res.Value.Bool(), nil
}

// Structure

func (e *Element) AppendChild(child ports.View) error {
	c, err := e.adopt(child)
	if err != nil {
		return err
	}
	return e.call("append child", `(c) => { this.appendChild(c) }`, c.el.Object)
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
	return e.call("insert before", `(c, r) => { if (c !== r) this.insertBefore(c, r) }`, c.el.Object, r.el.Object)
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
	return e.call("replace child", `(n, o) => { if (n !== o) this.replaceChild(n, o) }`, n.el.Object, o.el.Object)
}

func (e *Element) RemoveChild(child ports.View) error {
	c, err := e.ownChild(child)
	if err != nil {
		return err
	}
	return e.call("remove child", `(c) => { this.removeChild(c) }`, c.el.Object)
}

func (e *Element) Children() ([]ports.View, error) {
	els, err := e.el.ElementsByJS(rod.Eval(`() => Array.from(this.children)`))
	if err != nil {
		return nil, fmt.Errorf("rod: children: %w", err)
	}
	return e.wrapAll(els), nil
}

// OuterHTML returns the serialized element.
func (e *Element) OuterHTML() (string, error) {
	html, err := e.el.HTML()
	if err != nil {
		return "", fmt.Errorf("rod: outer html: %w", err)
	}
	return html, nil
}

func (e *Element) adopt(v ports.View) (*Element, error) {
	c, ok := v.(*Element)
	if !ok || c == nil {
		return nil, fmt.Errorf("rod: %T: %w", v, domain.ErrForeignView)
	}
	cycle, err := e.test(`(c) => c.contains(this)`, c.el.Object)
	if err != nil {
		return nil, err
	}
	if cycle {
		return nil, fmt.Errorf("rod: insert into own subtree: %w", domain.ErrCycle)
	}
	return c, nil
}

func (e *Element) ownChild(v ports.View) (*Element, error) {
	c, ok := v.(*Element)
	if !ok || c == nil {
		return nil, fmt.Errorf("rod: %T: %w", v, domain.ErrForeignView)
	}
	own, err := e.test(`(c) => c.parentNode === this`, c.el.Object)
	if err != nil {
		return nil, err
	}
	if !own {
		return nil, fmt.Errorf("rod: reference is not a child: %w", domain.ErrNotChild)
	}
	return c, nil
}

// Attributes

func (e *Element) Attribute(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, fmt.Errorf("rod: attribute %s: %w", name, err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *Element) AttributeNS(namespace, localName string) (string, bool, error) {
	if namespace == "" {
		return e.Attribute(localName)
	}
	res, err := e.el.Eval(`(ns, name) => this.hasAttributeNS(ns, name) ? [this.getAttributeNS(ns, name)] : []`, namespace, localName)
	if err != nil {
		return "", false, fmt.Errorf("rod: attribute %s: %w", localName, err)
	}
	arr := res.Value.Arr()
	if len(arr) == 0 {
		return "", false, nil
	}
	return arr[0].Str(), true, nil
}

func (e *Element) SetAttribute(name, value string) error {
	if name == "" {
		return fmt.Errorf("set attribute: empty name: %w", domain.ErrInvalidArgument)
	}
	return e.call("set attribute", `(n, v) => { this.setAttribute(n, v) }`, name, value)
}

func (e *Element) SetAttributeNS(namespace, qualifiedName, value string) error {
	if qualifiedName == "" {
		return fmt.Errorf("set attribute: empty name: %w", domain.ErrInvalidArgument)
	}
	if namespace == "" {
		return e.SetAttribute(qualifiedName, value)
	}
	return e.call("set attribute", `(ns, n, v) => { this.setAttributeNS(ns, n, v) }`, namespace, qualifiedName, value)
}

func (e *Element) RemoveAttribute(name string) error {
	return e.call("remove attribute", `(n) => { this.removeAttribute(n) }`, name)
}

func (e *Element) RemoveAttributeNS(namespace, localName string) error {
	if namespace == "" {
		return e.RemoveAttribute(localName)
	}
	return e.call("remove attribute", `(ns, n) => { this.removeAttributeNS(ns, n) }`, namespace, localName)
}

func (e *Element) AttributeNames() ([]string, error) {
	return e.strings("attribute names", `() => this.getAttributeNames()`)
}

func (e *Element) strings(op, js string) ([]string, error) {
	res, err := e.el.Eval(js)
	if err != nil {
		return nil, fmt.Errorf("rod: %s: %w", op, err)
	}
	arr := res.Value.Arr()
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.Str())
	}
	return out, nil
}

// ClassList

func (e *Element) Classes() ([]string, error) {
	return e.strings("classes", `() => Array.from(this.classList)`)
}

func (e *Element) AddClass(names ...string) error {
	if err := validClasses(names); err != nil {
		return err
	}
	return e.call("add class", `(...names) => { this.classList.add(...names) }`, toArgs(names)...)
}

func (e *Element) RemoveClass(names ...string) error {
	if err := validClasses(names); err != nil {
		return err
	}
	return e.call("remove class", `(...names) => { this.classList.remove(...names) }`, toArgs(names)...)
}

func validClasses(names []string) error {
	for _, n := range names {
		if n == "" || strings.ContainsAny(n, " \t\n\r\f") {
			return fmt.Errorf("class %q: %w", n, domain.ErrInvalidArgument)
		}
	}
	return nil
}

func toArgs(names []string) []interface{} {
	args := make([]interface{}, len(names))
	for i, n := range names {
		args[i] = n
	}
	return args
}

// Selector

func (e *Element) QuerySelector(selector string) (ports.View, error) {
	has, el, err := e.el.Has(selector)
	if err != nil {
		return nil, fmt.Errorf("rod: selector %q: %v: %w", selector, err, domain.ErrInvalidArgument)
	}
	if !has {
		return nil, nil
	}
	return e.doc.wrap(el), nil
}

func (e *Element) QuerySelectorAll(selector string) ([]ports.View, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("rod: selector %q: %v: %w", selector, err, domain.ErrInvalidArgument)
	}
	return e.wrapAll(els), nil
}

func (e *Element) wrapAll(els rod.Elements) []ports.View {
	views := make([]ports.View, 0, len(els))
	for _, el := range els {
		views = append(views, e.doc.wrap(el))
	}
	return views
}
