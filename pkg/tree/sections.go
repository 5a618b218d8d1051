package tree

import (
	"strings"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/ports"
)

// NewSection creates a div node carrying the whitespace separated classNames.
func NewSection(doc ports.Document, id, classNames string, opts ...Option) (*Node, error) {
	opts = append([]Option{WithID(id), WithClasses(strings.Fields(classNames)...)}, opts...)
	return New(doc, domain.SectionTag, opts...)
}

// NewWidget creates the root section of a user widget.
func NewWidget(doc ports.Document, id string, opts ...Option) (*Node, error) {
	return NewSection(doc, id, domain.ClassWidget, opts...)
}

// NewOptions creates the options panel section of a widget.
func NewOptions(doc ports.Document, id string, opts ...Option) (*Node, error) {
	return NewSection(doc, id, domain.ClassOptions, opts...)
}
