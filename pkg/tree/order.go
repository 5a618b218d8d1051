package tree

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// orderedChildren keeps the child id sequence and the id->Node map in a single structure,
// so the two can never disagree on their key sets.
type orderedChildren struct {
	m *orderedmap.OrderedMap[string, *Node]
}

func newOrderedChildren() *orderedChildren {
	return &orderedChildren{m: orderedmap.New[string, *Node]()}
}

func (o *orderedChildren) len() int {
	return o.m.Len()
}

func (o *orderedChildren) get(id string) (*Node, bool) {
	return o.m.Get(id)
}

func (o *orderedChildren) has(id string) bool {
	_, ok := o.m.Get(id)
	return ok
}

// at returns the child at ordinal index.
func (o *orderedChildren) at(index int) (*Node, bool) {
	if index < 0 {
		return nil, false
	}
	i := 0
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		if i == index {
			return pair.Value, true
		}
		i++
	}
	return nil, false
}

func (o *orderedChildren) indexOf(id string) int {
	i := 0
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == id {
			return i
		}
		i++
	}
	return -1
}

func (o *orderedChildren) ids() []string {
	ids := make([]string, 0, o.m.Len())
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

func (o *orderedChildren) nodes() []*Node {
	nodes := make([]*Node, 0, o.m.Len())
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		nodes = append(nodes, pair.Value)
	}
	return nodes
}

// set stores n under id, keeping the position of an existing entry.
func (o *orderedChildren) set(id string, n *Node) {
	o.m.Set(id, n)
}

// insertBefore stores n under the absent id immediately before ref.
func (o *orderedChildren) insertBefore(id string, n *Node, ref string) {
	o.m.Set(id, n)
	// both keys are present at this point
	_ = o.m.MoveBefore(id, ref)
}

// rekey replaces the entry for oldID with newID at the same position.
// newID must be absent unless it equals oldID.
func (o *orderedChildren) rekey(oldID, newID string, n *Node) {
	if oldID == newID {
		o.m.Set(newID, n)
		return
	}
	o.insertBefore(newID, n, oldID)
	o.m.Delete(oldID)
}

func (o *orderedChildren) delete(id string) {
	o.m.Delete(id)
}
