package tree

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/itemtree/pkg/domain"
)

// Add appends item as the last child and returns it.
//
// If a different child already uses item's id, item takes its place instead: the view swaps
// the two at the same position and the replaced child is detached. Adding a node that is
// already a child is a no-op. A node attached elsewhere is moved.
func (n *Node) Add(item *Node) (*Node, error) {
	if err := n.checkInsertable(item); err != nil {
		return nil, err
	}

	existing, ok := n.items.get(item.id)
	if ok && existing == item {
		return item, nil
	}

	if ok {
		if err := n.view.ReplaceChild(item.view, existing.view); err != nil {
			return nil, fmt.Errorf("replace view of %q: %w", item.id, err)
		}
		item.release(n)
		n.unindexSubtree(existing)
		existing.parent = nil
		n.items.set(item.id, item)
		n.adopt(item)
		n.hooks.Emit(domain.MutationEvent{
			Op:       domain.OpReplace,
			ParentID: n.id,
			ItemID:   item.id,
			OldID:    item.id,
			Index:    n.items.indexOf(item.id),
		})
		return item, nil
	}

	if err := n.view.AppendChild(item.view); err != nil {
		return nil, fmt.Errorf("append view of %q: %w", item.id, err)
	}
	item.release(n)
	n.items.set(item.id, item)
	n.adopt(item)
	n.hooks.Emit(domain.MutationEvent{
		Op:       domain.OpAdd,
		ParentID: n.id,
		ItemID:   item.id,
		Index:    n.items.len() - 1,
	})
	return item, nil
}

// Replace puts newItem at the position of the child oldID and returns the detached old child.
// The view is only touched when the two children have different views.
func (n *Node) Replace(newItem *Node, oldID string) (*Node, error) {
	if err := n.checkInsertable(newItem); err != nil {
		return nil, err
	}
	old, ok := n.items.get(oldID)
	if !ok {
		return nil, &domain.NotFoundError{Op: "replace", ID: oldID}
	}
	if old == newItem {
		return old, nil
	}
	if other, ok := n.items.get(newItem.id); ok && other != old && other != newItem {
		return nil, fmt.Errorf("replace %q with %q: %w", oldID, newItem.id, domain.ErrDuplicateID)
	}

	if old.key != newItem.key {
		if err := n.view.ReplaceChild(newItem.view, old.view); err != nil {
			return nil, fmt.Errorf("replace view of %q: %w", oldID, err)
		}
	}

	newItem.release(n)
	n.items.rekey(oldID, newItem.id, newItem)
	n.unindexSubtree(old)
	old.parent = nil
	n.adopt(newItem)
	n.hooks.Emit(domain.MutationEvent{
		Op:       domain.OpReplace,
		ParentID: n.id,
		ItemID:   newItem.id,
		OldID:    oldID,
		Index:    n.items.indexOf(newItem.id),
	})
	return old, nil
}

// Remove detaches the child id from the tree and from this node's view, and returns it.
func (n *Node) Remove(id string) (*Node, error) {
	item, ok := n.items.get(id)
	if !ok {
		return nil, &domain.NotFoundError{Op: "remove", ID: id}
	}
	// A view already moved away by other code is as detached as we want it.
	if err := n.view.RemoveChild(item.view); err != nil && !errors.Is(err, domain.ErrNotChild) {
		return nil, fmt.Errorf("remove view of %q: %w", id, err)
	}

	n.detach(item)
	return item, nil
}

// detach drops the child item from the order and the index once its view is gone.
func (n *Node) detach(item *Node) {
	n.items.delete(item.id)
	n.unindexSubtree(item)
	item.parent = nil
	n.hooks.Emit(domain.MutationEvent{
		Op:       domain.OpRemove,
		ParentID: n.id,
		ItemID:   item.id,
		Index:    -1,
	})
}

// PopAt removes the child at ordinal index.
func (n *Node) PopAt(index int) (*Node, error) {
	if index < 0 {
		return nil, fmt.Errorf("pop index %d: %w", index, domain.ErrInvalidArgument)
	}
	item, ok := n.items.at(index)
	if !ok {
		return nil, &domain.NotFoundError{Op: "pop", ID: strconv.Itoa(index)}
	}
	return n.Remove(item.id)
}

// InsertAt inserts item at ordinal index and returns it.
//
// If item is already a child its old slot is dropped first, so this is a move. A different
// child holding item's id is detached the way Remove would, then item is inserted. An index
// at or past the end appends. A node attached to another parent is moved from it in the same call.
func (n *Node) InsertAt(index int, item *Node) (*Node, error) {
	if index < 0 {
		return nil, fmt.Errorf("insert index %d: %w", index, domain.ErrInvalidArgument)
	}
	if err := n.checkInsertable(item); err != nil {
		return nil, err
	}

	existing, _ := n.items.get(item.id)
	if existing == item {
		existing = nil
	}
	// The reference child is taken from the order with item's own slot, and the slot it
	// evicts, already removed.
	ref := n.childAt(index, item, existing)

	if existing != nil {
		if err := n.view.RemoveChild(existing.view); err != nil && !errors.Is(err, domain.ErrNotChild) {
			return nil, fmt.Errorf("remove view of %q: %w", existing.id, err)
		}
		n.detach(existing)
	}

	var err error
	if ref == nil {
		err = n.view.AppendChild(item.view)
	} else {
		err = n.view.InsertBefore(item.view, ref.view)
	}
	if err != nil {
		return nil, fmt.Errorf("insert view of %q at %d: %w", item.id, index, err)
	}

	item.release(n)
	if ref == nil {
		n.items.set(item.id, item)
	} else {
		n.items.insertBefore(item.id, item, ref.id)
	}
	n.adopt(item)
	n.hooks.Emit(domain.MutationEvent{
		Op:       domain.OpInsert,
		ParentID: n.id,
		ItemID:   item.id,
		Index:    n.items.indexOf(item.id),
	})
	return item, nil
}

// childAt returns the child at index as if the skipped nodes were not children, or nil past the end.
func (n *Node) childAt(index int, skip ...*Node) *Node {
	i := 0
next:
	for _, c := range n.items.nodes() {
		for _, s := range skip {
			if c == s {
				continue next
			}
		}
		if i == index {
			return c
		}
		i++
	}
	return nil
}

func (n *Node) checkInsertable(item *Node) error {
	if item == nil {
		return fmt.Errorf("nil item: %w", domain.ErrInvalidArgument)
	}
	for a := n; a != nil; a = a.parent {
		if a == item {
			return fmt.Errorf("insert %q under %q: %w", item.id, n.id, domain.ErrCycle)
		}
	}
	return nil
}

// release drops n from its current parent's bookkeeping without touching any view.
// Callers have already moved the view under next.
func (n *Node) release(next *Node) {
	p := n.parent
	if p == nil {
		return
	}
	p.items.delete(n.id)
	p.unindexSubtree(n)
	n.parent = nil
	if p != next {
		p.hooks.Emit(domain.MutationEvent{
			Op:       domain.OpRemove,
			ParentID: p.id,
			ItemID:   n.id,
			Index:    -1,
		})
	}
}

func (n *Node) adopt(item *Node) {
	item.parent = n
	n.indexSubtree(item)
}

func (n *Node) indexSubtree(item *Node) {
	for a := n; a != nil; a = a.parent {
		a.index[item.key] = item
		for k, d := range item.index {
			a.index[k] = d
		}
	}
}

func (n *Node) unindexSubtree(item *Node) {
	for a := n; a != nil; a = a.parent {
		delete(a.index, item.key)
		for k := range item.index {
			delete(a.index, k)
		}
	}
}
