// Package rod implements the view ports on a live browser page driven through go-rod.
//
// Elements are identified across wrappers by a uuid stored in a JS property of the DOM
// element, so two handles obtained through different queries report the same Key.
package rod

import (
	"context"
	"fmt"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/ports"
	"github.com/go-rod/rod"
)

// Document creates elements in the document loaded by a rod page.
type Document struct {
	page *rod.Page
}

var _ ports.Document = (*Document)(nil)

// NewDocument binds a Document to page. The context bounds every later call made through
// the elements it creates.
func NewDocument(ctx context.Context, page *rod.Page) *Document {
	return &Document{page: page.Context(ctx)}
}

// Page returns the underlying page.
func (d *Document) Page() *rod.Page {
	return d.page
}

func (d *Document) CreateElement(tag string) (ports.View, error) {
	if tag == "" {
		return nil, fmt.Errorf("create element: empty tag: %w", domain.ErrInvalidArgument)
	}
	return d.view(rod.Eval(`(tag) => document.createElement(tag)`, tag))
}

func (d *Document) CreateElementNS(namespace, qualifiedName string) (ports.View, error) {
	if qualifiedName == "" {
		return nil, fmt.Errorf("create element: empty name: %w", domain.ErrInvalidArgument)
	}
	if namespace == "" {
		namespace = domain.NamespaceHTML
	}
	return d.view(rod.Eval(`(ns, name) => document.createElementNS(ns, name)`, namespace, qualifiedName))
}

func (d *Document) view(js *rod.EvalOptions) (ports.View, error) {
	el, err := d.create(js)
	if err != nil {
		return nil, err
	}
	return el, nil
}

// Body returns the page's body element, the usual mount point for a widget.
func (d *Document) Body() (*Element, error) {
	return d.create(rod.Eval(`() => document.body`))
}

// Find returns the first element of the page matching selector, or nil.
func (d *Document) Find(selector string) (*Element, error) {
	has, el, err := d.page.Has(selector)
	if err != nil {
		return nil, fmt.Errorf("rod: find %q: %v: %w", selector, err, domain.ErrInvalidArgument)
	}
	if !has {
		return nil, nil
	}
	return d.wrap(el), nil
}

func (d *Document) create(js *rod.EvalOptions) (*Element, error) {
	obj, err := d.page.Evaluate(js.ByObject())
	if err != nil {
		return nil, fmt.Errorf("rod: create element: %w", err)
	}
	el, err := d.page.ElementFromObject(obj)
	if err != nil {
		return nil, fmt.Errorf("rod: create element: %w", err)
	}
	return d.wrap(el), nil
}

func (d *Document) wrap(el *rod.Element) *Element {
	return &Element{doc: d, el: el}
}
