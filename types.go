package vcedit

// NodeID is a stable handle for a tree node. Zero means "no node".
type NodeID uint64

type OpType string

const (
	OpUpdateText OpType = "UPDATE_TEXT" // Splice text inside a node
	OpInsertNode OpType = "INSERT_NODE" // Attach a detached node at an anchor
	OpDeleteNode OpType = "DELETE_NODE" // Detach a node, remembering its anchor
)

type AnchorKind string

const (
	AnchorFirstChild AnchorKind = "FIRST_CHILD" // Ref is the parent
	AnchorBefore     AnchorKind = "BEFORE"      // Ref is the next sibling
	AnchorLastChild  AnchorKind = "LAST_CHILD"  // Ref is the parent
)

// Anchor describes a position in the tree relative to another node.
type Anchor struct {
	Kind AnchorKind `json:"kind"`
	Ref  NodeID     `json:"ref"`
}

// FirstChildOf anchors a node as the first child of parent.
func FirstChildOf(parent NodeID) Anchor {
	return Anchor{Kind: AnchorFirstChild, Ref: parent}
}

// Before anchors a node immediately before the sibling next.
func Before(next NodeID) Anchor {
	return Anchor{Kind: AnchorBefore, Ref: next}
}

// LastChildOf anchors a node as the last child of parent.
func LastChildOf(parent NodeID) Anchor {
	return Anchor{Kind: AnchorLastChild, Ref: parent}
}

// Operation represents an atomic, self-invertible change to the tree.
// Every node is referenced by identifier, never by pointer.
type Operation struct {
	Type   OpType `json:"type"`
	Node   NodeID `json:"node"`
	Offset int    `json:"offset,omitempty"` // UpdateText: code point offset into the text before the op
	Before string `json:"before,omitempty"` // UpdateText: text replaced
	After  string `json:"after,omitempty"`  // UpdateText: text inserted
	Anchor Anchor `json:"anchor,omitzero"`  // InsertNode/DeleteNode: where the node sits when attached
}

// Caret is a cursor position: a node and a code point offset inside it.
type Caret struct {
	Node   NodeID `json:"node"`
	Offset int    `json:"offset"`
}

// Range is a captured selection. The zero value is NullRange.
type Range struct {
	Anchor Caret `json:"anchor"`
	Focus  Caret `json:"focus"`
}

// NullRange stands for "no selection".
var NullRange = Range{}

// IsNull reports whether r carries no selection.
func (r Range) IsNull() bool {
	return r.Anchor.Node == 0 && r.Focus.Node == 0
}

// Collapsed returns a caret-only range at (node, offset).
func Collapsed(node NodeID, offset int) Range {
	c := Caret{Node: node, Offset: offset}
	return Range{Anchor: c, Focus: c}
}

// Batch is one undo unit: the operations plus the range after they applied.
type Batch struct {
	Ops   []Operation `json:"ops"`
	Range Range       `json:"range"`
}

func (b Batch) clone() Batch {
	ops := make([]Operation, len(b.Ops))
	copy(ops, b.Ops)
	return Batch{Ops: ops, Range: b.Range}
}
