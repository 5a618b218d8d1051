/*
Package tree implements an ordered tree of uniquely named nodes kept in lockstep with an
external view.

Every Node owns a ports.View created through a ports.Document. Structural operations
(Add, Replace, Remove, PopAt, InsertAt, SetID) mutate the view first and only then update the
in-memory bookkeeping, so a failing view leaves the tree untouched and the view's child order
always equals the node's child id order.

# Identity

Ids are unique among siblings only. A node built without an id gets "ITEM-" followed by a
process-wide counter that every construction advances.

# Queries

FindOne and FindAll delegate selector matching to the view and map each match back to its
Node through a reverse index (view key to descendant) maintained on every mutation. Matches
with no Node, such as markup appended to the view by other code, are dropped.

# Concurrency

A tree is not safe for concurrent use. Serialize access per tree, for example with the
workspace package.

Example:

	doc := memory.NewDocument()
	widget, _ := tree.NewWidget(doc, "info")
	title, _ := tree.New(doc, "h3", tree.WithID("title"))
	_ = widget.Children().Add(title)
	found, _ := widget.FindOne("h3")
*/
package tree
