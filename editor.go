package vcedit

import (
	"fmt"

	"golang.org/x/net/html"
)

// Editor carries a document root together with its identity store and
// history. Every mutation goes through it so that it can be undone.
type Editor struct {
	root    *html.Node
	history *History
}

// NewEditor wraps root with a fresh history. The root gets an identifier
// right away.
func NewEditor(root *html.Node, opts ...Option) *Editor {
	h := NewHistory(opts...)
	h.root = root
	h.store.Assign(root)
	return &Editor{root: root, history: h}
}

// Open parses content into a <div> root and freezes the history, so the
// loaded content cannot be undone away.
func Open(content string, opts ...Option) (*Editor, error) {
	root, err := ParseFragment(content)
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	e := NewEditor(root, opts...)
	if err := e.Freeze(); err != nil {
		return nil, err
	}
	return e, nil
}

// Root returns the document root.
func (e *Editor) Root() *html.Node {
	return e.root
}

// History returns the underlying history.
func (e *Editor) History() *History {
	return e.history
}

// ID returns the identifier of n, assigning one if needed.
func (e *Editor) ID(n *html.Node) NodeID {
	return e.history.store.Assign(n)
}

// Node resolves an identifier.
func (e *Editor) Node(id NodeID) (*html.Node, error) {
	return e.history.store.Resolve(id)
}

// NodeAt returns the node at path below the root.
func (e *Editor) NodeAt(path NodePath) (*html.Node, error) {
	return GetNode(e.root, path)
}

// PathOf returns the child-index path from the root to n.
func (e *Editor) PathOf(n *html.Node) (NodePath, error) {
	return GetPath(e.root, n)
}

// InsertText inserts text at the code point offset of node's text.
// Inserting nothing records nothing.
func (e *Editor) InsertText(node *html.Node, offset int, text string) error {
	if node == nil {
		return fmt.Errorf("%w: insert text into nil node", ErrInvariantViolation)
	}
	if text == "" {
		return nil
	}
	return e.history.Record(UpdateText(e.ID(node), offset, "", text))
}

// DeleteText removes length code points at offset of node's text. A zero
// length records nothing once the offset is checked.
func (e *Editor) DeleteText(node *html.Node, offset, length int) error {
	if node == nil {
		return fmt.Errorf("%w: delete text from nil node", ErrInvariantViolation)
	}
	text, _, err := textOf(node)
	if err != nil {
		return err
	}
	runes := []rune(text)
	if offset < 0 || length < 0 || offset+length > len(runes) {
		return fmt.Errorf("%w: delete [%d, %d) in text of length %d", ErrOffsetOutOfRange, offset, offset+length, len(runes))
	}
	if length == 0 {
		return nil
	}
	return e.history.Record(UpdateText(e.ID(node), offset, string(runes[offset:offset+length]), ""))
}

// SetText replaces node's text with text, recorded as the smallest
// single splice. Setting the current text records nothing.
func (e *Editor) SetText(node *html.Node, text string) error {
	if node == nil {
		return fmt.Errorf("%w: set text of nil node", ErrInvariantViolation)
	}
	current, _, err := textOf(node)
	if err != nil {
		return err
	}
	offset, before, after := diffText(current, text)
	if before == "" && after == "" {
		return nil
	}
	return e.history.Record(UpdateText(e.ID(node), offset, before, after))
}

// InsertNodeAtFirst inserts the detached node as the first child of parent.
func (e *Editor) InsertNodeAtFirst(node, parent *html.Node) error {
	return e.InsertNode(node, parent, nil)
}

// InsertNodeBefore inserts the detached node immediately before next.
func (e *Editor) InsertNodeBefore(node, next *html.Node) error {
	return e.InsertNode(node, nil, next)
}

// InsertNodeLast inserts the detached node as the last child of parent.
func (e *Editor) InsertNodeLast(node, parent *html.Node) error {
	if node == nil || parent == nil {
		return fmt.Errorf("%w: insert needs a node and a parent", ErrInvariantViolation)
	}
	op, err := InsertNode(e.ID(node), LastChildOf(e.ID(parent)))
	if err != nil {
		return err
	}
	return e.history.Record(op)
}

// InsertNode inserts the detached node either as the first child of
// parent or before next. Exactly one of the two must be given.
func (e *Editor) InsertNode(node, parent, next *html.Node) error {
	if node == nil {
		return fmt.Errorf("%w: insert of nil node", ErrInvariantViolation)
	}
	anchor, err := anchorFor(e.history.store, parent, next)
	if err != nil {
		return err
	}
	op, err := InsertNode(e.ID(node), anchor)
	if err != nil {
		return err
	}
	return e.history.Record(op)
}

// DeleteNode detaches node from its parent.
func (e *Editor) DeleteNode(node *html.Node) error {
	if node == nil {
		return fmt.Errorf("%w: delete of nil node", ErrInvariantViolation)
	}
	if node == e.root {
		return fmt.Errorf("%w: cannot delete the root", ErrInvariantViolation)
	}
	anchor, err := anchorOf(e.history.store, node)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	op, err := DeleteNode(e.ID(node), anchor)
	if err != nil {
		return err
	}
	return e.history.Record(op)
}

// Flush closes the current batch. A nil snapshot captures the live cursor.
func (e *Editor) Flush(snapshot *Range) error {
	return e.history.Flush(snapshot)
}

// Undo reverts the newest batch.
func (e *Editor) Undo() error {
	return e.history.Undo()
}

// Redo re-applies the most recently undone batch.
func (e *Editor) Redo() error {
	return e.history.Redo()
}

// Freeze makes the current state the oldest undoable one.
func (e *Editor) Freeze() error {
	return e.history.Freeze()
}

// DiscardCurrent reverts and drops the pending operations.
func (e *Editor) DiscardCurrent() error {
	return e.history.DiscardCurrent()
}

// HistorySize returns the number of past and future batches.
func (e *Editor) HistorySize() int {
	return e.history.Size()
}

// HTML renders the children of the root.
func (e *Editor) HTML() (string, error) {
	return RenderChildren(e.root)
}
