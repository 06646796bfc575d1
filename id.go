package vcedit

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// DefaultIDAttr is the attribute AttrStore stamps identifiers into.
const DefaultIDAttr = "data-vcedit-id"

// IDStore binds stable identifiers to tree nodes.
//
// Assign is idempotent: a node that already has an identifier keeps it.
// Resolve fails with a *NotFoundError rather than returning nil, because
// callers cannot proceed without the node.
type IDStore interface {
	Assign(n *html.Node) NodeID
	Lookup(n *html.Node) (NodeID, bool)
	Resolve(id NodeID) (*html.Node, error)
	Release(id NodeID)
	Len() int
}

// MapStore is the counter plus side table strategy. The reverse table
// stands in for a back-reference on the node itself.
type MapStore struct {
	next  NodeID
	nodes map[NodeID]*html.Node
	ids   map[*html.Node]NodeID
}

// NewMapStore creates an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{
		nodes: make(map[NodeID]*html.Node),
		ids:   make(map[*html.Node]NodeID),
	}
}

func (s *MapStore) Assign(n *html.Node) NodeID {
	if n == nil {
		return 0
	}
	if id, ok := s.ids[n]; ok {
		return id
	}
	s.next++
	s.nodes[s.next] = n
	s.ids[n] = s.next
	return s.next
}

func (s *MapStore) Lookup(n *html.Node) (NodeID, bool) {
	id, ok := s.ids[n]
	return id, ok
}

func (s *MapStore) Resolve(id NodeID) (*html.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return n, nil
}

func (s *MapStore) Release(id NodeID) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	delete(s.nodes, id)
	delete(s.ids, n)
}

func (s *MapStore) Len() int {
	return len(s.nodes)
}

// AttrStore stamps identifiers onto the nodes as an attribute. The stamp
// is the node-to-id direction; a side table resolves id-to-node so that
// detached nodes stay reachable.
//
// Stamps carry a random per-store prefix, so markup copied from another
// store (or another process) is never mistaken for a local identifier.
type AttrStore struct {
	key    string
	prefix string
	next   NodeID
	nodes  map[NodeID]*html.Node
}

// NewAttrStore creates an AttrStore stamping into the attribute key.
// An empty key selects DefaultIDAttr.
func NewAttrStore(key string) *AttrStore {
	if key == "" {
		key = DefaultIDAttr
	}
	return &AttrStore{
		key:    key,
		prefix: uuid.NewString()[:8] + "-",
		nodes:  make(map[NodeID]*html.Node),
	}
}

// Key returns the attribute name stamps are written to.
func (s *AttrStore) Key() string {
	return s.key
}

func (s *AttrStore) Assign(n *html.Node) NodeID {
	if n == nil {
		return 0
	}
	if id, ok := s.Lookup(n); ok {
		return id
	}
	s.next++
	s.nodes[s.next] = n
	setAttr(n, s.key, s.prefix+strconv.FormatUint(uint64(s.next), 10))
	return s.next
}

// Lookup reads the stamp. Stamps from other stores, stamps whose binding
// was released, and stamps copied onto a clone all read as absent.
func (s *AttrStore) Lookup(n *html.Node) (NodeID, bool) {
	if n == nil {
		return 0, false
	}
	val, ok := getAttr(n, s.key)
	if !ok || !strings.HasPrefix(val, s.prefix) {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(val, s.prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	id := NodeID(v)
	if s.nodes[id] != n {
		return 0, false
	}
	return id, true
}

func (s *AttrStore) Resolve(id NodeID) (*html.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return n, nil
}

// Release forgets the binding. The stamp stays on the node, inert.
func (s *AttrStore) Release(id NodeID) {
	delete(s.nodes, id)
}

func (s *AttrStore) Len() int {
	return len(s.nodes)
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
