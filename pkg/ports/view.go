package ports

// Identity exposes the identifying metadata of a view.
// Tag, local name and namespace are fixed for the lifetime of the view.
type Identity interface {
	// Key is a stable token unique within the owning Document.
	// Two handles to the same underlying element always return the same Key.
	Key() string

	ID() string
	SetID(id string) error

	TagName() string
	LocalName() string
	NamespaceURI() string
	BaseURI() string
}

// Structure mirrors the child-list mutations of the host tree.
// Inserting a view that already has a parent moves it, as in the DOM.
type Structure interface {
	AppendChild(child View) error
	// InsertBefore inserts child immediately before ref, which must be a child of the receiver.
	InsertBefore(child, ref View) error
	// ReplaceChild puts newChild at the position of oldChild and detaches oldChild.
	ReplaceChild(newChild, oldChild View) error
	RemoveChild(child View) error
	// Children returns the element children in order.
	Children() ([]View, error)
}

// Attributes is the key/value storage of a view.
type Attributes interface {
	Attribute(name string) (value string, ok bool, err error)
	AttributeNS(namespace, localName string) (value string, ok bool, err error)
	SetAttribute(name, value string) error
	SetAttributeNS(namespace, qualifiedName, value string) error
	RemoveAttribute(name string) error
	RemoveAttributeNS(namespace, localName string) error
	AttributeNames() ([]string, error)
}

// ClassList is the set of classification tags carried by a view.
type ClassList interface {
	Classes() ([]string, error)
	AddClass(names ...string) error
	RemoveClass(names ...string) error
}

// Selector searches the descendants of a view (the view itself is never matched).
type Selector interface {
	// QuerySelector returns the first match in document order, or nil if nothing matches.
	QuerySelector(selector string) (View, error)
	QuerySelectorAll(selector string) ([]View, error)
}

// View is the external handle a Node keeps in lockstep with its structure.
type View interface {
	Identity
	Structure
	Attributes
	ClassList
	Selector
}

// Document creates views.
type Document interface {
	CreateElement(tag string) (View, error)
	CreateElementNS(namespace, qualifiedName string) (View, error)
}

// Renderer is implemented by views that can serialize their subtree.
type Renderer interface {
	OuterHTML() (string, error)
}
