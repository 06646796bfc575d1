package vcedit

import (
	"errors"
	"fmt"
)

// Identity errors
var (
	// ErrNotFound indicates that an identifier does not resolve to a node.
	ErrNotFound = errors.New("node not found")
)

// Operation errors
var (
	// ErrInvariantViolation indicates a malformed operation, such as an
	// anchor with both or neither of its placements.
	ErrInvariantViolation = errors.New("operation invariant violated")

	// ErrUnknownOp indicates an operation type outside the closed set.
	ErrUnknownOp = errors.New("unknown operation type")

	// ErrNotTextNode indicates that a text update targets a node holding no text.
	ErrNotTextNode = errors.New("target is not a text node")

	// ErrOffsetOutOfRange indicates a text span outside the node's text.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrTextMismatch indicates that the text at the span differs from what
	// the operation expects to replace.
	ErrTextMismatch = errors.New("text mismatch")

	// ErrNodeAttached indicates an insert of a node that is still in a tree.
	ErrNodeAttached = errors.New("node is attached")

	// ErrNodeDetached indicates a removal of, or an anchor on, a node that
	// is not in a tree.
	ErrNodeDetached = errors.New("node is detached")
)

// History errors
var (
	// ErrNoSelection indicates that no live cursor could be captured.
	ErrNoSelection = errors.New("no selection")

	// ErrHistoryCorrupted indicates that an earlier undo or redo failed
	// half way and the tree no longer matches the history.
	ErrHistoryCorrupted = errors.New("history corrupted")
)

// NotFoundError reports the identifier that failed to resolve.
type NotFoundError struct {
	ID NodeID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node %d not found", e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
