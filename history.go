package vcedit

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

// History groups operations into batches and moves the tree backward and
// forward through them.
//
// past always holds at least the sentinel batch describing the state
// before any undoable edit. Edits are applied when recorded; a flush
// closes the current batch. History is not safe for concurrent use: the
// embedder serialises every call.
type History struct {
	settings

	past    []Batch
	future  []Batch
	current []Operation

	// root, when set, lets dropped batches release identifiers of nodes
	// that are no longer in the document.
	root *html.Node

	// err is the first failure of an undo, redo or discard; once set the
	// tree no longer matches the batches.
	err error
}

// NewHistory creates a history with the sentinel batch in past. Without
// WithIDStore it binds identifiers in a fresh MapStore.
func NewHistory(opts ...Option) *History {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.store == nil {
		s.store = NewMapStore()
	}
	return &History{
		settings: s,
		past:     []Batch{{}},
	}
}

// Store returns the identity store operations are resolved against.
func (h *History) Store() IDStore {
	return h.store
}

// Record applies op to the tree and appends it to the current batch.
// Redo history does not survive a fresh edit, so future is cleared.
func (h *History) Record(op Operation) error {
	if h.err != nil {
		return h.err
	}
	if err := Apply(h.store, op); err != nil {
		h.emit(EventRecord, 1, err)
		return err
	}
	h.push(op)
	return nil
}

// Track appends op to the current batch without applying it, for edits
// the host has already made to the tree itself.
func (h *History) Track(op Operation) error {
	if h.err != nil {
		return h.err
	}
	switch op.Type {
	case OpUpdateText:
		if op.Node == 0 {
			return fmt.Errorf("%w: operation has no node", ErrInvariantViolation)
		}
	case OpInsertNode, OpDeleteNode:
		if err := validateAnchor(op.Node, op.Anchor); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Type)
	}
	h.push(op)
	return nil
}

func (h *History) push(op Operation) {
	h.current = append(h.current, op)
	if len(h.future) > 0 {
		dropped := h.future
		h.future = nil
		h.release(dropped)
	}
	h.emit(EventRecord, 1, nil)
}

// Flush closes the current batch and pushes it onto past. The batch
// records snapshot as its range, or the live cursor when snapshot is nil.
// Flushing with nothing pending is a no-op.
func (h *History) Flush(snapshot *Range) error {
	if h.err != nil {
		return h.err
	}
	if len(h.current) == 0 {
		return nil
	}

	var r Range
	if snapshot != nil {
		r = *snapshot
	} else {
		var err error
		r, err = captureRange(h.store, h.selection)
		if err != nil {
			if !errors.Is(err, ErrNoSelection) || h.strictSelection {
				h.emit(EventFlush, len(h.current), err)
				return fmt.Errorf("capture selection: %w", err)
			}
			h.emit(EventNoSelection, len(h.current), nil)
			r = NullRange
		}
	}

	ops := h.current
	if h.mergeText {
		ops = compact(ops)
	}
	h.current = nil
	h.past = append(h.past, Batch{Ops: ops, Range: r})
	if len(h.future) > 0 {
		dropped := h.future
		h.future = nil
		h.release(dropped)
	}
	h.trim()
	h.emit(EventFlush, len(ops), nil)
	return nil
}

// Undo reverts the newest batch and restores the range that preceded it.
// Pending operations are flushed first. With only the sentinel left it
// does nothing.
func (h *History) Undo() error {
	if err := h.Flush(nil); err != nil {
		return err
	}
	if len(h.past) <= 1 {
		return nil
	}

	batch := h.past[len(h.past)-1]
	for i := len(batch.Ops) - 1; i >= 0; i-- {
		if err := Invert(h.store, batch.Ops[i]); err != nil {
			return h.corrupt(EventUndo, fmt.Errorf("undo op %d (%s): %w", i, batch.Ops[i].Type, err))
		}
	}
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, batch)
	h.emit(EventUndo, len(batch.Ops), nil)

	if err := restoreRange(h.store, h.selection, h.past[len(h.past)-1].Range); err != nil {
		return fmt.Errorf("restore selection: %w", err)
	}
	return nil
}

// Redo re-applies the most recently undone batch and restores its range.
// Pending operations are flushed first, which also drops the redo
// history. With nothing undone it does nothing.
func (h *History) Redo() error {
	if err := h.Flush(nil); err != nil {
		return err
	}
	if len(h.future) == 0 {
		return nil
	}

	batch := h.future[len(h.future)-1]
	for i, op := range batch.Ops {
		if err := Apply(h.store, op); err != nil {
			return h.corrupt(EventRedo, fmt.Errorf("redo op %d (%s): %w", i, op.Type, err))
		}
	}
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, batch)
	h.emit(EventRedo, len(batch.Ops), nil)

	if err := restoreRange(h.store, h.selection, batch.Range); err != nil {
		return fmt.Errorf("restore selection: %w", err)
	}
	return nil
}

// Freeze flushes and forgets all history: the current state becomes the
// new sentinel, so nothing before it can be undone.
func (h *History) Freeze() error {
	if err := h.Flush(nil); err != nil {
		return err
	}
	dropped := append(h.past, h.future...)
	h.past = []Batch{{Range: h.past[len(h.past)-1].Range}}
	h.future = nil
	h.release(dropped)
	h.emit(EventFreeze, 0, nil)
	return nil
}

// DiscardCurrent reverts the pending operations and empties the current
// batch. Redo history dropped by those operations stays dropped.
func (h *History) DiscardCurrent() error {
	if h.err != nil {
		return h.err
	}
	for i := len(h.current) - 1; i >= 0; i-- {
		if err := Invert(h.store, h.current[i]); err != nil {
			return h.corrupt(EventDiscard, fmt.Errorf("discard op %d (%s): %w", i, h.current[i].Type, err))
		}
	}
	n := len(h.current)
	h.current = nil
	h.emit(EventDiscard, n, nil)
	return nil
}

// Size returns the number of batches in past and future together,
// sentinel included.
func (h *History) Size() int {
	return len(h.past) + len(h.future)
}

// CanUndo reports whether a committed batch can be undone.
func (h *History) CanUndo() bool {
	return len(h.past) > 1
}

// CanRedo reports whether an undone batch can be redone.
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// Pending returns the number of operations in the current batch.
func (h *History) Pending() int {
	return len(h.current)
}

// Err returns the failure that corrupted the history, if any.
func (h *History) Err() error {
	return h.err
}

// Past returns a copy of the committed batches, oldest first, sentinel
// included.
func (h *History) Past() []Batch {
	return cloneBatches(h.past)
}

// Future returns a copy of the undone batches; the next to redo is last.
func (h *History) Future() []Batch {
	return cloneBatches(h.future)
}

func cloneBatches(batches []Batch) []Batch {
	out := make([]Batch, len(batches))
	for i, b := range batches {
		out[i] = b.clone()
	}
	return out
}

func (h *History) corrupt(kind EventKind, err error) error {
	h.err = fmt.Errorf("%w: %w", ErrHistoryCorrupted, err)
	h.emit(kind, 0, h.err)
	return h.err
}

// trim keeps the sentinel plus the newest maxBatches batches. The new
// sentinel takes the range of the newest batch trimmed away.
func (h *History) trim() {
	if h.maxBatches <= 0 || len(h.past)-1 <= h.maxBatches {
		return
	}
	excess := len(h.past) - 1 - h.maxBatches
	dropped := h.past[:excess+1]
	past := make([]Batch, 0, h.maxBatches+1)
	past = append(past, Batch{Range: h.past[excess].Range})
	past = append(past, h.past[excess+1:]...)
	h.past = past
	h.release(dropped)
}

// release unbinds identifiers referenced only by dropped batches whose
// nodes are no longer in the document.
func (h *History) release(dropped []Batch) {
	if h.root == nil {
		return
	}
	kept := h.references()
	released := 0
	for _, b := range dropped {
		for _, id := range batchIDs(b) {
			if _, ok := kept[id]; ok {
				continue
			}
			kept[id] = struct{}{}
			n, err := h.store.Resolve(id)
			if err != nil || isDescendant(h.root, n) {
				continue
			}
			h.store.Release(id)
			released++
		}
	}
	if released > 0 {
		h.emit(EventRelease, released, nil)
	}
}

// references collects every identifier still in use by the history.
func (h *History) references() map[NodeID]struct{} {
	refs := make(map[NodeID]struct{})
	for _, batches := range [][]Batch{h.past, h.future} {
		for _, b := range batches {
			for _, id := range batchIDs(b) {
				refs[id] = struct{}{}
			}
		}
	}
	for _, op := range h.current {
		for _, id := range referencedIDs(op) {
			refs[id] = struct{}{}
		}
	}
	return refs
}

func batchIDs(b Batch) []NodeID {
	ids := []NodeID{b.Range.Anchor.Node, b.Range.Focus.Node}
	for _, op := range b.Ops {
		ids = append(ids, referencedIDs(op)...)
	}
	return ids
}

func (h *History) emit(kind EventKind, ops int, err error) {
	if h.observer == nil {
		return
	}
	h.observer(Event{
		Kind:   kind,
		Ops:    ops,
		Past:   len(h.past),
		Future: len(h.future),
		Err:    err,
	})
}
