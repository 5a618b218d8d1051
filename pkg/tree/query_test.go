package tree_test

import (
	"testing"

	"github.com/aretw0/itemtree/pkg/adapters/memory"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPanel returns:
//
//	panel
//	├── title (h2.heading)
//	└── body (div.content)
//	    ├── one (p.note)
//	    └── two (p.note.warn)
func buildPanel(t *testing.T) (*memory.Document, *tree.Node) {
	t.Helper()
	doc := memory.NewDocument()
	panel, err := tree.NewWidget(doc, "panel")
	require.NoError(t, err)

	title, err := tree.New(doc, "h2", tree.WithID("title"), tree.WithClasses("heading"))
	require.NoError(t, err)
	body, err := tree.NewSection(doc, "body", "content")
	require.NoError(t, err)
	one, err := tree.New(doc, "p", tree.WithID("one"), tree.WithClasses("note"))
	require.NoError(t, err)
	two, err := tree.New(doc, "p", tree.WithID("two"), tree.WithClasses("note", "warn"))
	require.NoError(t, err)

	require.NoError(t, body.Children().Add(one, two))
	require.NoError(t, panel.Children().Add(title, body))
	return doc, panel
}

func TestNode_FindOne(t *testing.T) {
	_, panel := buildPanel(t)

	found, err := panel.FindOne("p.note")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "one", found.ID())

	found, err = panel.FindOne("#two")
	require.NoError(t, err)
	assert.Equal(t, []string{"panel", "body", "two"}, found.Path())

	found, err = panel.FindOne("table")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = panel.FindOne(".user-widget")
	require.NoError(t, err)
	assert.Nil(t, found, "the receiver itself never matches")
}

func TestNode_FindAll(t *testing.T) {
	_, panel := buildPanel(t)

	found, err := panel.FindAll(".note, h2")
	require.NoError(t, err)
	ids := make([]string, 0, len(found))
	for _, n := range found {
		ids = append(ids, n.ID())
	}
	assert.Equal(t, []string{"title", "one", "two"}, ids, "document order")
}

func TestNode_FindSkipsUnownedViews(t *testing.T) {
	_, panel := buildPanel(t)
	body := panel.GetByID("body")
	require.NoError(t, body.View().(*memory.Element).AppendHTML(`<p class="note" id="raw">raw</p>`))

	found, err := panel.FindAll("p.note")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	one, err := panel.FindOne("#raw")
	require.NoError(t, err)
	assert.Nil(t, one)
}

func TestNode_FindTracksMoves(t *testing.T) {
	doc, panel := buildPanel(t)
	two := panel.Descend("body", "two")
	require.NotNil(t, two)

	other := newNode(t, doc, "other")
	_, err := other.Add(two)
	require.NoError(t, err)

	found, err := panel.FindOne("#two")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = other.FindOne(".warn")
	require.NoError(t, err)
	assert.Same(t, two, found)
}

func TestNode_FindInvalidSelector(t *testing.T) {
	_, panel := buildPanel(t)

	_, err := panel.FindOne("  ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = panel.FindAll("")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = panel.FindAll("[[[")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestNode_GetByClassName(t *testing.T) {
	_, panel := buildPanel(t)
	body := panel.GetByID("body")

	matches, err := body.GetByClassName("warn missing")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "two", matches[0].ID())

	matches, err = panel.GetByClassName("content heading")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "title", matches[0].ID())

	matches, err = panel.GetByClassName("note")
	require.NoError(t, err)
	assert.Empty(t, matches, "direct children only")
}

func TestNode_GetByTagName(t *testing.T) {
	doc, panel := buildPanel(t)
	circle, err := tree.New(doc, "circle", tree.WithID("dot"), tree.WithNamespace(domain.NamespaceSVG))
	require.NoError(t, err)
	_, err = panel.Add(circle)
	require.NoError(t, err)

	assert.Len(t, panel.GetByTagName("DIV"), 1)
	assert.Empty(t, panel.GetByTagName("div"), "HTML tag names are upper case")
	assert.Len(t, panel.GetByTagName("circle"), 1)

	svg := panel.GetByTagNameNS(domain.NamespaceSVG, "circle")
	require.Len(t, svg, 1)
	assert.Same(t, circle, svg[0])
	assert.Empty(t, panel.GetByTagNameNS(domain.NamespaceHTML, "circle"))
}

func TestNode_Lookups(t *testing.T) {
	_, panel := buildPanel(t)

	assert.Equal(t, 2, panel.Len())
	assert.Equal(t, "body", panel.Get(1).ID())
	assert.Nil(t, panel.Get(2))
	assert.Nil(t, panel.Get(-1))
	assert.Equal(t, -1, panel.IndexOf("nope"))
	assert.Len(t, panel.Items(), 2)
	assert.Same(t, panel, panel.Descend("body", "one").Root())
	assert.Nil(t, panel.Descend("body", "nope"))
	assert.False(t, panel.Children().Contains(nil))
	assert.Same(t, panel, panel.Children().Node())
}

func TestNode_Lookup(t *testing.T) {
	_, panel := buildPanel(t)

	n, err := panel.Lookup("/body/two/")
	require.NoError(t, err)
	assert.Equal(t, "two", n.ID())

	self, err := panel.Lookup("")
	require.NoError(t, err)
	assert.Same(t, panel, self)

	_, err = panel.Lookup("body/three")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
