package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an explicit id or index does not name a current child.
var ErrNotFound = errors.New("item not found")

// ErrInvalidArgument is returned for malformed input such as an empty selector or a negative index.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrDuplicateID is returned when an operation would leave two siblings with the same id.
var ErrDuplicateID = errors.New("duplicate item id")

// ErrCycle is returned when a node would become its own ancestor.
var ErrCycle = errors.New("item cannot contain itself")

// ErrForeignView is returned by adapters handed a view created by a different adapter.
var ErrForeignView = errors.New("view belongs to a different document")

// ErrNotChild is returned by adapters when a reference view is not a child of the receiver.
var ErrNotChild = errors.New("view is not a child")

// ErrTreeNotFound is returned when a named tree is not open in a workspace.
var ErrTreeNotFound = errors.New("tree not found")

// NotFoundError reports which operation failed to find which id.
// It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Op string
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot %s the item with id of %q as it doesn't exist", e.Op, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
