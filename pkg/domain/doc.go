/*
Package domain contains the core domain vocabulary shared by the itemtree packages.

It defines the error taxonomy, the mutation events emitted by the tree, and the NodeSpec
description used to declare or snapshot a subtree. This package is kept pure and free of
external dependencies like views, transports or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - NodeSpec: A declarative, serializable description of a node and its children.
  - MutationEvent: A structural change performed on a node (add, replace, remove, ...).
  - Hooks: Callbacks that let callers observe mutations without the core logging anything.
  - NotFoundError: The typed form of ErrNotFound returned by explicit-id operations.
*/
package domain
