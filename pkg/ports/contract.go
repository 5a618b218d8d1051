package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunViewContract runs a suite of tests to verify that a Document and the Views it creates
// adhere to the defined interface contract.
func RunViewContract(t *testing.T, doc Document) {
	t.Helper()

	newView := func(t *testing.T, tag, id string) View {
		t.Helper()
		v, err := doc.CreateElement(tag)
		require.NoError(t, err, "CreateElement should not return error")
		if id != "" {
			require.NoError(t, v.SetID(id))
		}
		return v
	}

	t.Run("Identity", func(t *testing.T) {
		v := newView(t, "div", "box")

		assert.NotEmpty(t, v.Key())
		assert.Equal(t, "box", v.ID())
		assert.Equal(t, "DIV", v.TagName())
		assert.Equal(t, "div", v.LocalName())
		assert.Equal(t, "http://www.w3.org/1999/xhtml", v.NamespaceURI())

		id, ok, err := v.Attribute("id")
		require.NoError(t, err)
		assert.True(t, ok, "id must be reflected as an attribute")
		assert.Equal(t, "box", id)

		other := newView(t, "div", "box")
		assert.NotEqual(t, v.Key(), other.Key(), "keys must be unique per element")
	})

	t.Run("Namespaced Element", func(t *testing.T) {
		v, err := doc.CreateElementNS("http://www.w3.org/2000/svg", "circle")
		require.NoError(t, err)
		assert.Equal(t, "circle", v.LocalName())
		assert.Equal(t, "http://www.w3.org/2000/svg", v.NamespaceURI())
	})

	t.Run("Child Order", func(t *testing.T) {
		parent := newView(t, "ul", "list")
		a, b, c := newView(t, "li", "a"), newView(t, "li", "b"), newView(t, "li", "c")
		d, e := newView(t, "li", "d"), newView(t, "li", "e")

		require.NoError(t, parent.AppendChild(a))
		require.NoError(t, parent.AppendChild(b))
		require.NoError(t, parent.AppendChild(c))
		assert.Equal(t, []string{"a", "b", "c"}, childIDs(t, parent))

		require.NoError(t, parent.InsertBefore(d, b))
		assert.Equal(t, []string{"a", "d", "b", "c"}, childIDs(t, parent))

		// Inserting an existing child moves it.
		require.NoError(t, parent.InsertBefore(c, a))
		assert.Equal(t, []string{"c", "a", "d", "b"}, childIDs(t, parent))

		require.NoError(t, parent.ReplaceChild(e, d))
		assert.Equal(t, []string{"c", "a", "e", "b"}, childIDs(t, parent))

		require.NoError(t, parent.RemoveChild(a))
		assert.Equal(t, []string{"c", "e", "b"}, childIDs(t, parent))

		// Re-appending an existing child moves it to the end.
		require.NoError(t, parent.AppendChild(c))
		assert.Equal(t, []string{"e", "b", "c"}, childIDs(t, parent))

		children, err := parent.Children()
		require.NoError(t, err)
		assert.Equal(t, e.Key(), children[0].Key(), "children must resolve to the same keys")
	})

	t.Run("Move Across Parents", func(t *testing.T) {
		p1, p2 := newView(t, "div", "p1"), newView(t, "div", "p2")
		x := newView(t, "span", "x")

		require.NoError(t, p1.AppendChild(x))
		require.NoError(t, p2.AppendChild(x))

		assert.Empty(t, childIDs(t, p1))
		assert.Equal(t, []string{"x"}, childIDs(t, p2))
	})

	t.Run("Reference Must Be A Child", func(t *testing.T) {
		parent := newView(t, "div", "host")
		stranger := newView(t, "div", "stranger")
		x := newView(t, "span", "x")

		assert.Error(t, parent.InsertBefore(x, stranger))
		assert.Error(t, parent.RemoveChild(stranger))
		assert.Empty(t, childIDs(t, parent), "failed mutation must not change children")
	})

	t.Run("Attributes", func(t *testing.T) {
		v := newView(t, "div", "attrs")

		require.NoError(t, v.SetAttribute("data-role", "panel"))
		val, ok, err := v.Attribute("data-role")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "panel", val)

		names, err := v.AttributeNames()
		require.NoError(t, err)
		assert.Contains(t, names, "data-role")

		require.NoError(t, v.RemoveAttribute("data-role"))
		_, ok, err = v.Attribute("data-role")
		require.NoError(t, err)
		assert.False(t, ok)

		const xlink = "http://www.w3.org/1999/xlink"
		require.NoError(t, v.SetAttributeNS(xlink, "xlink:href", "#target"))
		val, ok, err = v.AttributeNS(xlink, "href")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "#target", val)

		require.NoError(t, v.RemoveAttributeNS(xlink, "href"))
		_, ok, err = v.AttributeNS(xlink, "href")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Classes", func(t *testing.T) {
		v := newView(t, "div", "classes")

		require.NoError(t, v.AddClass("a", "b", "a"))
		classes, err := v.Classes()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, classes)

		require.NoError(t, v.RemoveClass("a", "missing"))
		classes, err = v.Classes()
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, classes)
	})

	t.Run("Selectors", func(t *testing.T) {
		root := newView(t, "section", "root")
		require.NoError(t, root.AddClass("hit"))
		first := newView(t, "div", "first")
		nested := newView(t, "span", "nested")
		second := newView(t, "div", "second")
		require.NoError(t, first.AddClass("hit"))
		require.NoError(t, nested.AddClass("hit"))
		require.NoError(t, root.AppendChild(first))
		require.NoError(t, first.AppendChild(nested))
		require.NoError(t, root.AppendChild(second))

		all, err := root.QuerySelectorAll(".hit")
		require.NoError(t, err)
		require.Len(t, all, 2, "the receiver itself must never match")
		assert.Equal(t, first.Key(), all[0].Key())
		assert.Equal(t, nested.Key(), all[1].Key())

		one, err := root.QuerySelector("div")
		require.NoError(t, err)
		require.NotNil(t, one)
		assert.Equal(t, first.Key(), one.Key())

		none, err := root.QuerySelector(".missing")
		require.NoError(t, err)
		assert.Nil(t, none)

		_, err = root.QuerySelectorAll("[[[")
		assert.Error(t, err, "invalid selectors must fail")
	})
}

func childIDs(t *testing.T, v View) []string {
	t.Helper()
	children, err := v.Children()
	require.NoError(t, err)
	ids := make([]string, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID())
	}
	return ids
}
