package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/ports"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document implements ports.Document on top of golang.org/x/net/html nodes.
// Safe for concurrent use; the elements it creates are not.
type Document struct {
	baseURI string

	mu       sync.RWMutex
	prefixes map[string]string // attribute namespace URI -> prefix
}

// Option configures a Document.
type Option func(*Document)

// WithBaseURI sets the value reported by BaseURI on every element.
func WithBaseURI(uri string) Option {
	return func(d *Document) {
		d.baseURI = uri
	}
}

// NewDocument creates a new in-memory document.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		baseURI: "about:blank",
		prefixes: map[string]string{
			domain.NamespaceXLink: "xlink",
			domain.NamespaceXML:   "xml",
			domain.NamespaceXMLNS: "xmlns",
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateElement creates a detached HTML element.
func (d *Document) CreateElement(tag string) (ports.View, error) {
	if tag == "" {
		return nil, fmt.Errorf("create element: empty tag: %w", domain.ErrInvalidArgument)
	}
	tag = strings.ToLower(tag)
	return d.Wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}), nil
}

// CreateElementNS creates a detached element in the given namespace.
// A prefix in qualifiedName is dropped; the namespace alone decides the element's namespace.
func (d *Document) CreateElementNS(namespace, qualifiedName string) (ports.View, error) {
	local := qualifiedName
	if i := strings.IndexByte(qualifiedName, ':'); i >= 0 {
		local = qualifiedName[i+1:]
	}
	if local == "" {
		return nil, fmt.Errorf("create element: empty name: %w", domain.ErrInvalidArgument)
	}
	if namespace == "" || namespace == domain.NamespaceHTML {
		return d.CreateElement(local)
	}
	return d.Wrap(&html.Node{
		Type:      html.ElementNode,
		Data:      local,
		Namespace: shortNamespace(namespace),
	}), nil
}

// Wrap returns the view for an existing element node.
// Wrapping the same node twice yields views with the same Key.
func (d *Document) Wrap(n *html.Node) *Element {
	return &Element{doc: d, node: n}
}

// ParseFragment parses HTML in the context of a <body> and returns the top-level elements.
// The elements are detached and carry no Node of their own.
func (d *Document) ParseFragment(fragment string) ([]*Element, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	elements := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elements = append(elements, d.Wrap(n))
		}
	}
	return elements, nil
}

func (d *Document) prefixFor(namespaceURI, qualifiedName string) string {
	d.mu.RLock()
	prefix, ok := d.prefixes[namespaceURI]
	d.mu.RUnlock()
	if ok {
		return prefix
	}

	prefix = namespaceURI
	if i := strings.IndexByte(qualifiedName, ':'); i > 0 {
		prefix = qualifiedName[:i]
	}
	d.mu.Lock()
	d.prefixes[namespaceURI] = prefix
	d.mu.Unlock()
	return prefix
}

func (d *Document) lookupPrefix(namespaceURI string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	prefix, ok := d.prefixes[namespaceURI]
	return prefix, ok
}

func shortNamespace(uri string) string {
	switch uri {
	case domain.NamespaceSVG:
		return "svg"
	case domain.NamespaceMathML:
		return "math"
	}
	return uri
}

func namespaceURI(short string) string {
	switch short {
	case "":
		return domain.NamespaceHTML
	case "svg":
		return domain.NamespaceSVG
	case "math":
		return domain.NamespaceMathML
	}
	return short
}
