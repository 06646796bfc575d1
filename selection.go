package vcedit

import (
	"golang.org/x/net/html"
)

// Point is a live cursor position.
type Point struct {
	Node   *html.Node
	Offset int
}

// Selection is the host's live cursor. The history captures it when a
// batch is flushed and restores it after undo and redo.
//
// Current returns ErrNoSelection when there is no cursor. A nil focus node
// is read as a caret at the anchor.
type Selection interface {
	Current() (anchor, focus Point, err error)
	Restore(anchor, focus Point) error
}

// MemorySelection is a Selection held in memory, for hosts without a
// native selection of their own.
type MemorySelection struct {
	anchor Point
	focus  Point
}

// Set selects from anchor to focus.
func (s *MemorySelection) Set(anchor, focus Point) {
	s.anchor = anchor
	s.focus = focus
}

// Collapse places a caret.
func (s *MemorySelection) Collapse(node *html.Node, offset int) {
	p := Point{Node: node, Offset: offset}
	s.Set(p, p)
}

// Clear removes the selection.
func (s *MemorySelection) Clear() {
	s.Set(Point{}, Point{})
}

func (s *MemorySelection) Current() (Point, Point, error) {
	if s.anchor.Node == nil {
		return Point{}, Point{}, ErrNoSelection
	}
	return s.anchor, s.focus, nil
}

func (s *MemorySelection) Restore(anchor, focus Point) error {
	s.Set(anchor, focus)
	return nil
}

// captureRange turns the live cursor into an identifier-addressed Range.
func captureRange(store IDStore, sel Selection) (Range, error) {
	if sel == nil {
		return NullRange, ErrNoSelection
	}
	anchor, focus, err := sel.Current()
	if err != nil {
		return NullRange, err
	}
	if anchor.Node == nil {
		return NullRange, ErrNoSelection
	}
	if focus.Node == nil {
		focus = anchor
	}
	return Range{
		Anchor: Caret{Node: store.Assign(anchor.Node), Offset: anchor.Offset},
		Focus:  Caret{Node: store.Assign(focus.Node), Offset: focus.Offset},
	}, nil
}

// restoreRange resolves r and hands it to the live cursor. NullRange and
// a missing capability are no-ops.
func restoreRange(store IDStore, sel Selection, r Range) error {
	if sel == nil || r.IsNull() {
		return nil
	}
	anchor, err := store.Resolve(r.Anchor.Node)
	if err != nil {
		return err
	}
	focus, err := store.Resolve(r.Focus.Node)
	if err != nil {
		return err
	}
	return sel.Restore(
		Point{Node: anchor, Offset: r.Anchor.Offset},
		Point{Node: focus, Offset: r.Focus.Offset},
	)
}
