package vcedit

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodePath represents the traversal steps from the root to a target node.
// Example: [0, 1, 3] means root -> child[0] -> child[1] -> child[3]
type NodePath []int

// ParseHTML parses a full document into an HTML node tree.
func ParseHTML(content string) (*html.Node, error) {
	return html.Parse(strings.NewReader(content))
}

// ParseFragment parses markup as the children of a fresh <div> and
// returns that container. This is the usual shape of an editor root.
func ParseFragment(content string) (*html.Node, error) {
	root := NewElement("div")
	nodes, err := html.ParseFragment(strings.NewReader(content), root)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// RenderNode converts a node tree back to a string.
func RenderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderChildren renders the children of n, i.e. its inner HTML.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// NewElement creates a detached element node. Attributes are given as
// key/value pairs.
func NewElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// TextContent concatenates the text of all descendant text nodes.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(TextContent(c))
	}
	return sb.String()
}

// GetNode traverses the tree using the provided path to find a specific node.
func GetNode(root *html.Node, path NodePath) (*html.Node, error) {
	current := root
	for i, index := range path {
		child := getChildAtIndex(current, index)
		if child == nil {
			return nil, fmt.Errorf("%w at path %v (failed at index %d, step %d)", ErrNotFound, path, index, i)
		}
		current = child
	}
	return current, nil
}

// getChildAtIndex finds the Nth child of a node.
// Note: html.Node's children are a linked list (FirstChild, NextSibling).
func getChildAtIndex(parent *html.Node, index int) *html.Node {
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if count == index {
			return c
		}
		count++
	}
	return nil
}

// GetPath finds the path from root to the target node.
func GetPath(root, target *html.Node) (NodePath, error) {
	var path NodePath

	current := target
	for current != root {
		parent := current.Parent
		if parent == nil {
			return nil, fmt.Errorf("%w: target node is not a descendant of root", ErrNodeDetached)
		}

		index := getChildIndex(parent, current)
		if index == -1 {
			return nil, errors.New("integrity error: child not found in parent's list")
		}

		path = append(NodePath{index}, path...)
		current = parent
	}
	return path, nil
}

// getChildIndex returns the index of child within parent.
func getChildIndex(parent, child *html.Node) int {
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c == child {
			return count
		}
		count++
	}
	return -1
}

// isDescendant reports whether n is root or sits somewhere below it.
func isDescendant(root, n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c == root {
			return true
		}
	}
	return false
}

// isDetached reports whether n has no parent and no siblings, which is
// what html.Node.InsertBefore requires of a new child.
func isDetached(n *html.Node) bool {
	return n.Parent == nil && n.PrevSibling == nil && n.NextSibling == nil
}
