package dsl

import (
	"testing"

	"github.com/aretw0/itemtree/pkg/adapters/memory"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Spec(t *testing.T) {
	b := New()

	// Children before their parent, to check that order of attachment does not matter.
	b.Add("menu").Options().In("player")
	b.Add("title").Tag("h2").Class("heading").Attr("title", "Now playing").In("player")
	b.Add("player").Widget()
	b.Add("icon").Tag("svg").Namespace(domain.NamespaceSVG).In("title")
	b.Add("use").Tag("use").Namespace(domain.NamespaceSVG).Attr("xlink:href", "#play").In("icon")

	spec, err := b.Spec()
	require.NoError(t, err)

	want := domain.NodeSpec{
		ID:   "player",
		Kind: domain.KindWidget,
		Children: []domain.NodeSpec{
			{ID: "menu", Kind: domain.KindOptions},
			{
				ID:         "title",
				Tag:        "h2",
				Classes:    []string{"heading"},
				Attributes: map[string]string{"title": "Now playing"},
				Children: []domain.NodeSpec{{
					ID:        "icon",
					Tag:       "svg",
					Namespace: domain.NamespaceSVG,
					Children: []domain.NodeSpec{{
						ID:         "use",
						Tag:        "use",
						Namespace:  domain.NamespaceSVG,
						Attributes: map[string]string{"xlink:href": "#play"},
					}},
				}},
			},
		},
	}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("Spec() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	first := b.Add("x").Tag("p")
	second := b.Add("x")
	assert.Same(t, first, second)
	assert.Equal(t, "p", second.Spec().Tag)
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Builder)
		want  error
	}{
		{
			name:  "empty",
			setup: func(b *Builder) {},
			want:  domain.ErrInvalidArgument,
		},
		{
			name: "two roots",
			setup: func(b *Builder) {
				b.Add("a")
				b.Add("b")
			},
			want: domain.ErrInvalidArgument,
		},
		{
			name: "unknown parent",
			setup: func(b *Builder) {
				b.Add("root")
				b.Add("child").In("ghost")
			},
			want: domain.ErrNotFound,
		},
		{
			name: "parent loop",
			setup: func(b *Builder) {
				b.Add("root")
				b.Add("a").In("b")
				b.Add("b").In("a")
			},
			want: domain.ErrCycle,
		},
		{
			name: "empty id",
			setup: func(b *Builder) {
				b.Add("")
			},
			want: domain.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			tt.setup(b)
			_, err := b.Spec()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	b := New()
	b.Add("player").Widget()
	b.Add("b").Tag("p").In("player")
	b.Add("a").Tag("p").Class("first").In("player")

	doc := memory.NewDocument()
	root, err := b.Build(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, root.IDs())

	found, err := root.FindOne("p.first")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a", found.ID())
}
