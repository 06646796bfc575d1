package vcedit

import (
	"fmt"

	"golang.org/x/net/html"
)

// UpdateText builds a text splice replacing before with after at offset.
func UpdateText(node NodeID, offset int, before, after string) Operation {
	return Operation{
		Type:   OpUpdateText,
		Node:   node,
		Offset: offset,
		Before: before,
		After:  after,
	}
}

// InsertNode builds an insertion of node at anchor.
func InsertNode(node NodeID, anchor Anchor) (Operation, error) {
	if err := validateAnchor(node, anchor); err != nil {
		return Operation{}, err
	}
	return Operation{Type: OpInsertNode, Node: node, Anchor: anchor}, nil
}

// DeleteNode builds a removal of node, which currently sits at anchor.
func DeleteNode(node NodeID, anchor Anchor) (Operation, error) {
	if err := validateAnchor(node, anchor); err != nil {
		return Operation{}, err
	}
	return Operation{Type: OpDeleteNode, Node: node, Anchor: anchor}, nil
}

func validateAnchor(node NodeID, anchor Anchor) error {
	if node == 0 {
		return fmt.Errorf("%w: operation has no node", ErrInvariantViolation)
	}
	switch anchor.Kind {
	case AnchorFirstChild, AnchorBefore, AnchorLastChild:
	default:
		return fmt.Errorf("%w: unknown anchor kind %q", ErrInvariantViolation, anchor.Kind)
	}
	if anchor.Ref == 0 {
		return fmt.Errorf("%w: %s anchor has no reference node", ErrInvariantViolation, anchor.Kind)
	}
	if anchor.Ref == node {
		return fmt.Errorf("%w: node %d anchored to itself", ErrInvariantViolation, node)
	}
	return nil
}

// anchorOf records where n currently sits: before its next sibling, or
// as the last child of its parent.
func anchorOf(store IDStore, n *html.Node) (Anchor, error) {
	if n.Parent == nil {
		return Anchor{}, ErrNodeDetached
	}
	if n.NextSibling != nil {
		return Before(store.Assign(n.NextSibling)), nil
	}
	return LastChildOf(store.Assign(n.Parent)), nil
}

// anchorFor turns a raw (parent, next) placement into an Anchor. Exactly
// one of the two must be set.
func anchorFor(store IDStore, parent, next *html.Node) (Anchor, error) {
	switch {
	case parent != nil && next != nil:
		return Anchor{}, fmt.Errorf("%w: anchor has both parent and next sibling", ErrInvariantViolation)
	case parent != nil:
		return FirstChildOf(store.Assign(parent)), nil
	case next != nil:
		return Before(store.Assign(next)), nil
	default:
		return Anchor{}, fmt.Errorf("%w: anchor has neither parent nor next sibling", ErrInvariantViolation)
	}
}

// Inverse returns the operation that undoes op.
func Inverse(op Operation) Operation {
	switch op.Type {
	case OpUpdateText:
		return UpdateText(op.Node, op.Offset, op.After, op.Before)
	case OpInsertNode:
		op.Type = OpDeleteNode
	case OpDeleteNode:
		op.Type = OpInsertNode
	}
	return op
}

// Apply executes op forward against the nodes bound in store. Every
// identifier is resolved and the edit validated before the tree is
// touched, so a failing Apply leaves the tree unchanged.
func Apply(store IDStore, op Operation) error {
	switch op.Type {
	case OpUpdateText:
		return applyUpdateText(store, op)
	case OpInsertNode:
		return applyInsertNode(store, op)
	case OpDeleteNode:
		return applyDeleteNode(store, op)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Type)
	}
}

// Invert executes op backward.
func Invert(store IDStore, op Operation) error {
	return Apply(store, Inverse(op))
}

func applyUpdateText(store IDStore, op Operation) error {
	node, err := store.Resolve(op.Node)
	if err != nil {
		return err
	}
	text, target, err := textOf(node)
	if err != nil {
		return fmt.Errorf("node %d: %w", op.Node, err)
	}
	updated, err := splice(text, op.Offset, op.Before, op.After)
	if err != nil {
		return fmt.Errorf("node %d: %w", op.Node, err)
	}
	if target == nil {
		node.AppendChild(NewText(updated))
		return nil
	}
	target.Data = updated
	return nil
}

// textOf returns the text an update on n edits and the text node holding
// it. An element edits its first child, which must be text; an empty
// element reads as empty text with a nil holder.
func textOf(n *html.Node) (string, *html.Node, error) {
	switch n.Type {
	case html.TextNode:
		return n.Data, n, nil
	case html.ElementNode:
		c := n.FirstChild
		if c == nil {
			return "", nil, nil
		}
		if c.Type != html.TextNode {
			return "", nil, ErrNotTextNode
		}
		return c.Data, c, nil
	default:
		return "", nil, ErrNotTextNode
	}
}

// splice replaces before with after at the code point offset in text.
func splice(text string, offset int, before, after string) (string, error) {
	runes := []rune(text)
	end := offset + len([]rune(before))
	if offset < 0 || end > len(runes) {
		return "", fmt.Errorf("%w: span [%d, %d) in text of length %d", ErrOffsetOutOfRange, offset, end, len(runes))
	}
	if got := string(runes[offset:end]); got != before {
		return "", fmt.Errorf("%w: want %q at %d, got %q", ErrTextMismatch, before, offset, got)
	}
	return string(runes[:offset]) + after + string(runes[end:]), nil
}

func applyInsertNode(store IDStore, op Operation) error {
	node, err := store.Resolve(op.Node)
	if err != nil {
		return err
	}
	ref, err := store.Resolve(op.Anchor.Ref)
	if err != nil {
		return err
	}
	if !isDetached(node) {
		return fmt.Errorf("insert node %d: %w", op.Node, ErrNodeAttached)
	}
	if isDescendant(node, ref) {
		return fmt.Errorf("%w: insert node %d inside itself", ErrInvariantViolation, op.Node)
	}

	switch op.Anchor.Kind {
	case AnchorFirstChild:
		ref.InsertBefore(node, ref.FirstChild)
	case AnchorLastChild:
		ref.AppendChild(node)
	case AnchorBefore:
		if ref.Parent == nil {
			return fmt.Errorf("insert before node %d: %w", op.Anchor.Ref, ErrNodeDetached)
		}
		ref.Parent.InsertBefore(node, ref)
	default:
		return fmt.Errorf("%w: unknown anchor kind %q", ErrInvariantViolation, op.Anchor.Kind)
	}
	return nil
}

func applyDeleteNode(store IDStore, op Operation) error {
	node, err := store.Resolve(op.Node)
	if err != nil {
		return err
	}
	ref, err := store.Resolve(op.Anchor.Ref)
	if err != nil {
		return err
	}
	if node.Parent == nil {
		return fmt.Errorf("delete node %d: %w", op.Node, ErrNodeDetached)
	}
	if !sitsAt(node, op.Anchor.Kind, ref) {
		return fmt.Errorf("%w: node %d is not at %s of node %d", ErrInvariantViolation, op.Node, op.Anchor.Kind, op.Anchor.Ref)
	}
	node.Parent.RemoveChild(node)
	return nil
}

// sitsAt reports whether n is placed where anchor kind and ref say, so
// that reinserting it at the same anchor restores the tree.
func sitsAt(n *html.Node, kind AnchorKind, ref *html.Node) bool {
	switch kind {
	case AnchorFirstChild:
		return n.Parent == ref && n.PrevSibling == nil
	case AnchorLastChild:
		return n.Parent == ref && n.NextSibling == nil
	case AnchorBefore:
		return n.NextSibling == ref
	}
	return false
}

// referencedIDs returns every identifier op refers to.
func referencedIDs(op Operation) []NodeID {
	if op.Type == OpUpdateText {
		return []NodeID{op.Node}
	}
	return []NodeID{op.Node, op.Anchor.Ref}
}
