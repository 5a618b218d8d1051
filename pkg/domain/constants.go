package domain

// AutoIDPrefix is prepended to the process-wide counter when a node is built without an id.
const AutoIDPrefix = "ITEM-"

// Tags and class names used by the specialized container constructors.
const (
	SectionTag = "div"

	// ClassWidget marks the root container of a widget.
	ClassWidget = "user-widget"
	// ClassOptions marks the options panel of a widget.
	ClassOptions = "user-widget-options"
)

// Namespace URIs understood by the view adapters.
const (
	NamespaceHTML   = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
)

// Layout kinds accepted by declarative specs.
const (
	KindNode    = "node"
	KindSection = "section"
	KindWidget  = "widget"
	KindOptions = "options"
)

// Attribute namespaces addressed by prefix in layout files and snapshots ("xlink:href").
const (
	NamespaceXLink = "http://www.w3.org/1999/xlink"
	NamespaceXML   = "http://www.w3.org/XML/1998/namespace"
	NamespaceXMLNS = "http://www.w3.org/2000/xmlns/"
)

var attributePrefixes = map[string]string{
	"xlink": NamespaceXLink,
	"xml":   NamespaceXML,
	"xmlns": NamespaceXMLNS,
}

// AttributeNamespace resolves a well-known attribute prefix to its namespace URI.
func AttributeNamespace(prefix string) (string, bool) {
	ns, ok := attributePrefixes[prefix]
	return ns, ok
}

