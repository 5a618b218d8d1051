package tree_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/aretw0/itemtree/pkg/adapters/memory"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/ports"
	"github.com/aretw0/itemtree/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_OrderInvariant(t *testing.T) {
	doc := memory.NewDocument()
	parent := newNode(t, doc, "parent")
	other := newNode(t, doc, "other")

	pool := make([]*tree.Node, 12)
	for i := range pool {
		pool[i] = newNode(t, doc, fmt.Sprintf("n%d", i%8))
	}

	rng := rand.New(rand.NewSource(7))
	for step := 0; step < 500; step++ {
		item := pool[rng.Intn(len(pool))]
		var err error
		switch rng.Intn(5) {
		case 0:
			_, err = parent.Add(item)
		case 1:
			_, err = parent.InsertAt(rng.Intn(parent.Len()+2), item)
		case 2:
			if parent.Len() > 0 {
				_, err = parent.PopAt(rng.Intn(parent.Len()))
			}
		case 3:
			if parent.Len() > 0 {
				_, err = parent.Replace(item, parent.Get(rng.Intn(parent.Len())).ID())
				if errors.Is(err, domain.ErrDuplicateID) {
					err = nil
				}
			}
		case 4:
			_, err = other.Add(item)
		}
		require.NoError(t, err, "step %d", step)
		requireInSync(t, parent)
		requireInSync(t, other)

		seen := map[string]bool{}
		for _, id := range parent.IDs() {
			require.False(t, seen[id], "duplicate id %q at step %d", id, step)
			seen[id] = true
			require.Same(t, parent, parent.GetByID(id).Parent())
		}
	}
}

func TestNode_AddThenGet(t *testing.T) {
	doc, parent := newParent(t)
	x := newNode(t, doc, "x")

	require.NoError(t, parent.Children().Add(x))

	assert.Same(t, x, parent.GetByID("x"))
	assert.Same(t, parent, x.Parent())
	assert.True(t, parent.Children().Contains(x))
	assert.Same(t, x, parent.Children().Get("x"))
}

func TestNode_AddSameChildTwice(t *testing.T) {
	doc, parent := newParent(t, "a")
	x := newNode(t, doc, "x")
	_, err := parent.Add(x)
	require.NoError(t, err)

	_, err = parent.Add(x)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x"}, parent.IDs())
	requireInSync(t, parent)
}

func TestNode_AddOverwrite(t *testing.T) {
	doc, parent := newParent(t, "a", "1", "c")
	a := parent.GetByID("1")
	a2 := newNode(t, doc, "1")

	require.NoError(t, parent.Children().Add(a2))

	assert.Same(t, a2, parent.GetByID("1"))
	assert.Equal(t, 3, parent.Len())
	assert.Equal(t, 1, parent.IndexOf("1"))
	assert.Equal(t, []string{"a", "1", "c"}, parent.IDs())
	assert.Same(t, parent, a2.Parent())
	assert.Nil(t, a.Parent())
	requireInSync(t, parent)

	children, err := parent.View().Children()
	require.NoError(t, err)
	assert.Equal(t, a2.View().Key(), children[1].Key())
}

func TestNode_Replace(t *testing.T) {
	doc, parent := newParent(t, "1", "2", "3")
	b := parent.GetByID("2")
	d := newNode(t, doc, "4")

	old, err := parent.Replace(d, "2")
	require.NoError(t, err)

	assert.Same(t, b, old)
	assert.Equal(t, []string{"1", "4", "3"}, parent.IDs())
	assert.Same(t, parent, d.Parent())
	assert.Nil(t, b.Parent())
	requireInSync(t, parent)
}

func TestNode_ReplaceWithSibling(t *testing.T) {
	_, parent := newParent(t, "1", "2", "3")
	c := parent.GetByID("3")

	old, err := parent.Replace(c, "1")
	require.NoError(t, err)

	assert.Equal(t, "1", old.ID())
	assert.Equal(t, []string{"3", "2"}, parent.IDs())
	requireInSync(t, parent)
}

func TestNode_ReplaceDuplicateID(t *testing.T) {
	doc, parent := newParent(t, "1", "2")
	dup := newNode(t, doc, "2")

	_, err := parent.Replace(dup, "1")
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Equal(t, []string{"1", "2"}, parent.IDs())
}

func TestNode_RemoveThenLookup(t *testing.T) {
	doc, parent := newParent(t, "a")
	x := newNode(t, doc, "x")
	require.NoError(t, parent.Children().Add(x))

	removed, err := parent.Remove("x")
	require.NoError(t, err)

	assert.Same(t, x, removed)
	assert.False(t, parent.HasItem("x"))
	assert.Nil(t, parent.GetByID("x"))
	assert.Nil(t, x.Parent())
	assert.Equal(t, []string{"a"}, viewIDs(t, parent), "removal detaches the view")
}

func TestNode_NotFound(t *testing.T) {
	doc, parent := newParent(t, "a", "b", "c")
	before := parent.IDs()

	_, err := parent.Remove("nonexistent")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "remove", nf.Op)
	assert.Equal(t, "nonexistent", nf.ID)

	_, err = parent.Replace(newNode(t, doc, "y"), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = parent.PopAt(3)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, before, parent.IDs())
	assert.Equal(t, 3, parent.Len())
	requireInSync(t, parent)
}

func TestNode_InvalidArguments(t *testing.T) {
	doc, parent := newParent(t, "a")

	_, err := parent.PopAt(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = parent.InsertAt(-1, newNode(t, doc, "x"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = parent.Add(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = tree.New(nil, "div")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestNode_MoveAcrossParents(t *testing.T) {
	doc, parentA := newParent(t, "x", "y")
	parentB := newNode(t, doc, "b")
	_, err := parentB.Add(newNode(t, doc, "z"))
	require.NoError(t, err)
	x := parentA.GetByID("x")

	_, err = parentB.InsertAt(0, x)
	require.NoError(t, err)

	assert.Same(t, parentB, x.Parent())
	assert.False(t, parentA.HasItem("x"))
	assert.Same(t, x, parentB.GetByID("x"))
	assert.Equal(t, []string{"x", "z"}, parentB.IDs())
	requireInSync(t, parentA)
	requireInSync(t, parentB)
}

func TestNode_InsertAt(t *testing.T) {
	tests := []struct {
		name  string
		index int
		id    string
		want  []string
	}{
		{"front", 0, "new", []string{"new", "a", "b", "c"}},
		{"middle", 2, "new", []string{"a", "b", "new", "c"}},
		{"past end appends", 10, "new", []string{"a", "b", "c", "new"}},
		{"move forward", 2, "a", []string{"b", "c", "a"}},
		{"move back", 0, "c", []string{"c", "a", "b"}},
		{"move to same slot", 1, "b", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, parent := newParent(t, "a", "b", "c")
			item := parent.GetByID(tt.id)
			if item == nil {
				item = newNode(t, doc, tt.id)
			}

			_, err := parent.InsertAt(tt.index, item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parent.IDs())
			requireInSync(t, parent)
		})
	}
}

func TestNode_InsertAtEvictsSameID(t *testing.T) {
	doc := memory.NewDocument()
	var ops []domain.MutationOp
	hooks := domain.Hooks{OnMutation: func(e domain.MutationEvent) { ops = append(ops, e.Op) }}
	parent, err := tree.New(doc, "div", tree.WithID("parent"), tree.WithHooks(hooks))
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		_, err := parent.Add(newNode(t, doc, id))
		require.NoError(t, err)
	}
	oldB := parent.GetByID("b")
	ops = nil

	newB := newNode(t, doc, "b")
	got, err := parent.InsertAt(0, newB)
	require.NoError(t, err)
	assert.Same(t, newB, got)

	assert.Equal(t, []string{"b", "a", "c"}, parent.IDs())
	assert.Same(t, newB, parent.GetByID("b"))
	assert.Nil(t, oldB.Parent())
	assert.Equal(t, []domain.MutationOp{domain.OpRemove, domain.OpInsert}, ops)
	requireInSync(t, parent)

	found, err := parent.FindAll("div")
	require.NoError(t, err)
	assert.NotContains(t, found, oldB)

	_, err = parent.InsertAt(1, newNode(t, doc, "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, parent.IDs())
	requireInSync(t, parent)
}

func TestNode_RejectsCycles(t *testing.T) {
	doc, root := newParent(t, "mid")
	mid := root.GetByID("mid")
	leaf := newNode(t, doc, "leaf")
	_, err := mid.Add(leaf)
	require.NoError(t, err)

	_, err = leaf.Add(root)
	assert.ErrorIs(t, err, domain.ErrCycle)
	_, err = mid.InsertAt(0, mid)
	assert.ErrorIs(t, err, domain.ErrCycle)
	assert.Equal(t, []string{"parent", "mid", "leaf"}, leaf.Path())
}

func TestNode_SetID(t *testing.T) {
	_, parent := newParent(t, "a", "b", "c")
	b := parent.GetByID("b")

	require.NoError(t, b.SetID("bee"))
	assert.Equal(t, []string{"a", "bee", "c"}, parent.IDs())
	assert.Same(t, b, parent.GetByID("bee"))
	assert.Equal(t, "bee", b.View().ID())

	err := b.SetID("c")
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Equal(t, "bee", b.ID())

	require.NoError(t, b.SetID(""))
	assert.Regexp(t, `^ITEM-\d+$`, b.ID())
	assert.True(t, parent.HasItem(b.ID()))
	requireInSync(t, parent)
}

func TestNode_AutoIDs(t *testing.T) {
	doc := memory.NewDocument()
	const n = 20

	var prev uint64
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		node, err := tree.New(doc, "span")
		require.NoError(t, err)
		require.False(t, seen[node.ID()])
		seen[node.ID()] = true

		var seq uint64
		_, err = fmt.Sscanf(node.ID(), domain.AutoIDPrefix+"%d", &seq)
		require.NoError(t, err)
		if i > 0 {
			assert.Equal(t, prev+1, seq, "auto ids follow creation order")
		}
		prev = seq
	}

	// explicit ids still consume the counter
	_ = newNode(t, doc, "explicit")
	node, err := tree.New(doc, "span")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s%d", domain.AutoIDPrefix, prev+2), node.ID())
}

func TestNode_Hooks(t *testing.T) {
	doc := memory.NewDocument()
	var events []domain.MutationEvent
	hooks := domain.Hooks{OnMutation: func(e domain.MutationEvent) { events = append(events, e) }}

	parent, err := tree.New(doc, "div", tree.WithID("p"), tree.WithHooks(hooks))
	require.NoError(t, err)
	a := newNode(t, doc, "a")

	_, err = parent.Add(a)
	require.NoError(t, err)
	require.NoError(t, a.SetID("b"))
	_, err = parent.Remove("b")
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, domain.MutationEvent{Op: domain.OpAdd, ParentID: "p", ItemID: "a", Index: 0}, events[0])
	assert.Equal(t, domain.MutationEvent{Op: domain.OpRename, ParentID: "p", ItemID: "b", OldID: "a", Index: 0}, events[1])
	assert.Equal(t, domain.OpRemove, events[2].Op)
}

// flakyView fails structural operations on demand. Arguments are unwrapped before they
// reach the inner memory element, which only accepts its own views.
type flakyView struct {
	ports.View
	fail bool
}

var errFlaky = errors.New("view unavailable")

func unwrap(v ports.View) ports.View {
	if f, ok := v.(*flakyView); ok {
		return f.View
	}
	return v
}

func (f *flakyView) AppendChild(c ports.View) error {
	if f.fail {
		return errFlaky
	}
	return f.View.AppendChild(unwrap(c))
}

func (f *flakyView) InsertBefore(c, ref ports.View) error {
	if f.fail {
		return errFlaky
	}
	return f.View.InsertBefore(unwrap(c), unwrap(ref))
}

func (f *flakyView) ReplaceChild(n, o ports.View) error {
	if f.fail {
		return errFlaky
	}
	return f.View.ReplaceChild(unwrap(n), unwrap(o))
}

func (f *flakyView) RemoveChild(c ports.View) error {
	if f.fail {
		return errFlaky
	}
	return f.View.RemoveChild(unwrap(c))
}

func TestNode_ViewFailureLeavesTreeUnchanged(t *testing.T) {
	doc := memory.NewDocument()
	inner, err := doc.CreateElement("div")
	require.NoError(t, err)
	flaky := &flakyView{View: inner}
	parent, err := tree.Wrap(flaky, tree.WithID("parent"))
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		_, err := parent.Add(newNode(t, doc, id))
		require.NoError(t, err)
	}
	_, parentOfX := newParent(t, "x")
	x := parentOfX.GetByID("x")

	flaky.fail = true
	_, err = parent.Add(x)
	assert.ErrorIs(t, err, errFlaky)
	_, err = parent.Add(newNode(t, doc, "a"))
	assert.ErrorIs(t, err, errFlaky)
	_, err = parent.InsertAt(0, x)
	assert.ErrorIs(t, err, errFlaky)
	_, err = parent.Replace(x, "a")
	assert.ErrorIs(t, err, errFlaky)
	_, err = parent.Remove("b")
	assert.ErrorIs(t, err, errFlaky)

	assert.Equal(t, []string{"a", "b"}, parent.IDs())
	assert.Same(t, parentOfX, x.Parent())
	assert.True(t, parentOfX.HasItem("x"))
	requireInSync(t, parent)
	requireInSync(t, parentOfX)
}

func TestNode_RemoveToleratesDetachedView(t *testing.T) {
	_, parent := newParent(t, "a", "b")
	b := parent.GetByID("b")
	require.NoError(t, parent.View().RemoveChild(b.View()))

	_, err := parent.Remove("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, parent.IDs())
}

// keylessView stands in for a backend that could not produce a key.
type keylessView struct{ ports.View }

func (keylessView) Key() string { return "" }

func TestWrap_RejectsViewWithoutKey(t *testing.T) {
	doc := memory.NewDocument()
	inner, err := doc.CreateElement("div")
	require.NoError(t, err)

	_, err = tree.Wrap(keylessView{View: inner}, tree.WithID("k"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Empty(t, inner.ID())
}
