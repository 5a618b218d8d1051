package tree

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/ports"
)

// itemCount is shared by every Node ever constructed in the process.
var itemCount atomic.Uint64

// Node is an element of the tree: an id, ordered named children, a non-owning parent
// reference and the view it projects onto.
type Node struct {
	id     string
	autoID string

	view ports.View
	key  string

	// parent is a back-reference only; the parent's items map owns the node.
	parent *Node
	items  *orderedChildren
	// index maps the view key of every strict descendant to its Node.
	index map[string]*Node

	children *Children
	hooks    domain.Hooks
}

type config struct {
	id        string
	namespace string
	classes   []string
	hooks     domain.Hooks
}

// Option configures a Node at construction.
type Option func(*config)

// WithID sets an explicit id. An empty id keeps the auto-generated one.
func WithID(id string) Option {
	return func(c *config) {
		c.id = id
	}
}

// WithNamespace creates the view in the given namespace URI.
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

// WithClasses adds classification tags to the view.
func WithClasses(classes ...string) Option {
	return func(c *config) {
		c.classes = append(c.classes, classes...)
	}
}

// WithHooks registers observability hooks fired after every mutation of this node's children.
func WithHooks(hooks domain.Hooks) Option {
	return func(c *config) {
		c.hooks = c.hooks.Chain(hooks)
	}
}

// New creates a detached Node whose view is an element of the given tag.
func New(doc ports.Document, tag string, opts ...Option) (*Node, error) {
	if doc == nil {
		return nil, fmt.Errorf("new %s: nil document: %w", tag, domain.ErrInvalidArgument)
	}
	cfg := newConfig(opts)

	var (
		view ports.View
		err  error
	)
	if cfg.namespace != "" {
		view, err = doc.CreateElementNS(cfg.namespace, tag)
	} else {
		view, err = doc.CreateElement(tag)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s view: %w", tag, err)
	}
	return build(view, cfg, cfg.id)
}

// Wrap creates a detached Node over an existing view, such as a container that is already
// part of a live page. Without WithID the view's current id is kept, or an auto id is assigned.
// Views already below the wrapped one have no Node and never resolve in queries.
func Wrap(view ports.View, opts ...Option) (*Node, error) {
	if view == nil {
		return nil, fmt.Errorf("wrap: nil view: %w", domain.ErrInvalidArgument)
	}
	cfg := newConfig(opts)
	id := cfg.id
	if id == "" {
		id = view.ID()
	}
	return build(view, cfg, id)
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func build(view ports.View, cfg config, id string) (*Node, error) {
	// The key is cached for the node's lifetime and backs the reverse index.
	key := view.Key()
	if key == "" {
		return nil, fmt.Errorf("view has no key: %w", domain.ErrInvalidArgument)
	}
	seq := itemCount.Add(1) - 1
	n := &Node{
		autoID: domain.AutoIDPrefix + strconv.FormatUint(seq, 10),
		view:   view,
		key:    key,
		items:  newOrderedChildren(),
		index:  make(map[string]*Node),
		hooks:  cfg.hooks,
	}
	n.children = &Children{node: n}

	if id == "" {
		id = n.autoID
	}
	if err := view.SetID(id); err != nil {
		return nil, fmt.Errorf("set id %q: %w", id, err)
	}
	n.id = id

	if len(cfg.classes) > 0 {
		if err := view.AddClass(cfg.classes...); err != nil {
			return nil, fmt.Errorf("add classes to %q: %w", id, err)
		}
	}
	return n, nil
}

// ID returns the node's id, unique among its siblings.
func (n *Node) ID() string {
	return n.id
}

// SetID renames the node. An empty id reverts to the auto-generated one.
// With a parent, the parent re-keys its entry in place; renaming onto an id held by a
// sibling fails with domain.ErrDuplicateID and changes nothing.
func (n *Node) SetID(id string) error {
	if id == "" {
		id = n.autoID
	}
	if id == n.id {
		return nil
	}
	p := n.parent
	if p != nil {
		if other, ok := p.items.get(id); ok && other != n {
			return fmt.Errorf("rename %q to %q: %w", n.id, id, domain.ErrDuplicateID)
		}
	}
	if err := n.view.SetID(id); err != nil {
		return fmt.Errorf("rename %q to %q: %w", n.id, id, err)
	}

	old := n.id
	n.id = id
	if p != nil {
		p.items.rekey(old, id, n)
		p.hooks.Emit(domain.MutationEvent{
			Op:       domain.OpRename,
			ParentID: p.id,
			ItemID:   id,
			OldID:    old,
			Index:    p.items.indexOf(id),
		})
	}
	return nil
}

// View returns the external handle this node projects onto.
func (n *Node) View() ports.View {
	return n.view
}

// Parent returns the node this one is attached to, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child collection façade.
func (n *Node) Children() *Children {
	return n.children
}

// Attrs returns the attribute façade of the view.
func (n *Node) Attrs() *Attrs {
	return &Attrs{node: n}
}

// ClassList returns the classification tags façade of the view.
func (n *Node) ClassList() *ClassList {
	return &ClassList{view: n.view}
}

func (n *Node) TagName() string      { return n.view.TagName() }
func (n *Node) LocalName() string    { return n.view.LocalName() }
func (n *Node) NamespaceURI() string { return n.view.NamespaceURI() }
func (n *Node) BaseURI() string      { return n.view.BaseURI() }

// Root returns the topmost ancestor, or n itself when detached.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Path returns the ids from the root down to n.
func (n *Node) Path() []string {
	var path []string
	for a := n; a != nil; a = a.parent {
		path = append(path, a.id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Descend follows ids from n through successive children.
// It returns nil as soon as an id is missing.
func (n *Node) Descend(ids ...string) *Node {
	cur := n
	for _, id := range ids {
		next, ok := cur.items.get(id)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// Lookup resolves a slash separated id path below n. An empty path is n itself.
func (n *Node) Lookup(path string) (*Node, error) {
	ids := strings.FieldsFunc(path, func(c rune) bool { return c == '/' })
	found := n.Descend(ids...)
	if found == nil {
		return nil, &domain.NotFoundError{Op: "find", ID: path}
	}
	return found, nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%s", n.view.LocalName(), n.id)
}
