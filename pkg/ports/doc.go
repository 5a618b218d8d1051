/*
Package ports defines the driven ports (interfaces) consumed by the itemtree core.

These interfaces decouple the tree from the concrete representation it mirrors, allowing
the same Node operations to drive an in-memory HTML tree, a live browser page, or a test
fake.

# Key Interfaces

  - View: The external handle a Node projects onto (identity, structure, attributes, classes, selectors).
  - Document: Creates Views; every Node is built through one.
  - Renderer: Optional serialization of a View subtree.
  - DistributedLocker: Provides distributed locking for serializing access to shared trees.
*/
package ports
