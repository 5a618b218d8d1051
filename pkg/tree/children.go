package tree

// Children exposes child management of one Node without giving access to its storage.
type Children struct {
	node *Node
}

// Node returns the owner of the collection.
func (c *Children) Node() *Node {
	return c.node
}

// Contains reports whether item's id names a child of the owner.
func (c *Children) Contains(item *Node) bool {
	if item == nil {
		return false
	}
	return c.node.HasItem(item.ID())
}

// Get returns the child with the given id, or nil.
func (c *Children) Get(id string) *Node {
	return c.node.GetByID(id)
}

// Add adds each item in argument order, so a later item overwrites an earlier one with the
// same id. It stops at the first failure.
func (c *Children) Add(items ...*Node) error {
	for _, item := range items {
		if _, err := c.node.Add(item); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of children.
func (c *Children) Len() int {
	return c.node.Len()
}
