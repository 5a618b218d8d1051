package domain

// MutationOp names a structural change.
type MutationOp string

const (
	OpAdd     MutationOp = "add"
	OpReplace MutationOp = "replace"
	OpRemove  MutationOp = "remove"
	OpInsert  MutationOp = "insert"
	OpRename  MutationOp = "rename"
)

// MutationEvent describes a structural change after it has been applied to both the
// in-memory tree and its view.
type MutationEvent struct {
	Op       MutationOp `json:"op"`
	ParentID string     `json:"parent_id"`
	ItemID   string     `json:"item_id"`
	// OldID is set for replace and rename.
	OldID string `json:"old_id,omitempty"`
	// Index is the ordinal position of ItemID after the change, -1 when removed.
	Index int `json:"index"`
}

// Hooks defines callbacks for tree observability.
// Nil callbacks are skipped.
type Hooks struct {
	OnMutation func(MutationEvent)
}

// Emit invokes OnMutation if set.
func (h Hooks) Emit(e MutationEvent) {
	if h.OnMutation != nil {
		h.OnMutation(e)
	}
}

// Chain returns hooks that call h and then next.
func (h Hooks) Chain(next Hooks) Hooks {
	if h.OnMutation == nil {
		return next
	}
	if next.OnMutation == nil {
		return h
	}
	return Hooks{OnMutation: func(e MutationEvent) {
		h.OnMutation(e)
		next.OnMutation(e)
	}}
}
