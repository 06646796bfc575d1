package vcedit

import (
	"errors"
	"strings"
	"testing"
)

func mustOpen(t *testing.T, content string, opts ...Option) *Editor {
	t.Helper()
	e, err := Open(content, opts...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return e
}

func mustHTML(t *testing.T, e *Editor) string {
	t.Helper()
	out, err := e.HTML()
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	return out
}

func TestOpenFreezesContent(t *testing.T) {
	e := mustOpen(t, "<p>loaded</p>")
	if e.HistorySize() != 1 {
		t.Errorf("HistorySize = %d, want 1", e.HistorySize())
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := mustHTML(t, e); got != "<p>loaded</p>" {
		t.Errorf("HTML = %s", got)
	}
	if _, ok := e.History().Store().Lookup(e.Root()); !ok {
		t.Error("root has no identifier")
	}
}

func TestEditorTextEditing(t *testing.T) {
	tests := []struct {
		name string
		edit func(e *Editor) error
		want string
	}{
		{
			name: "insert",
			edit: func(e *Editor) error { return e.InsertText(e.Root().FirstChild, 5, " world") },
			want: "<p>hello world</p>",
		},
		{
			name: "insert via text node",
			edit: func(e *Editor) error { return e.InsertText(e.Root().FirstChild.FirstChild, 0, ">") },
			want: "<p>&gt;hello</p>",
		},
		{
			name: "delete",
			edit: func(e *Editor) error { return e.DeleteText(e.Root().FirstChild, 1, 3) },
			want: "<p>ho</p>",
		},
		{
			name: "set text",
			edit: func(e *Editor) error { return e.SetText(e.Root().FirstChild, "help") },
			want: "<p>help</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustOpen(t, "<p>hello</p>")
			if err := tt.edit(e); err != nil {
				t.Fatalf("edit failed: %v", err)
			}
			if err := e.Flush(nil); err != nil {
				t.Fatalf("Flush failed: %v", err)
			}
			if got := mustHTML(t, e); got != tt.want {
				t.Errorf("after edit = %s, want %s", got, tt.want)
			}
			if err := e.Undo(); err != nil {
				t.Fatalf("Undo failed: %v", err)
			}
			if got := mustHTML(t, e); got != "<p>hello</p>" {
				t.Errorf("after undo = %s", got)
			}
			if err := e.Redo(); err != nil {
				t.Fatalf("Redo failed: %v", err)
			}
			if got := mustHTML(t, e); got != tt.want {
				t.Errorf("after redo = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEditorSetTextRecordsMinimalSplice(t *testing.T) {
	e := mustOpen(t, "<p>hello world</p>")
	p := e.Root().FirstChild
	if err := e.SetText(p, "hello there world"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	if err := e.SetText(p, "hello there world"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	if n := e.History().Pending(); n != 1 {
		t.Fatalf("pending = %d, want 1 (unchanged text records nothing)", n)
	}
	e.Flush(nil)
	past := e.History().Past()
	op := past[len(past)-1].Ops[0]
	if op.Offset != 6 || op.Before != "" || op.After != "there " {
		t.Errorf("op = %+v, want insert of %q at 6", op, "there ")
	}
}

func TestEditorDeleteTextBounds(t *testing.T) {
	e := mustOpen(t, "<p>abc</p>")
	p := e.Root().FirstChild
	for _, tc := range [][2]int{{2, 2}, {-1, 1}, {0, -1}} {
		if err := e.DeleteText(p, tc[0], tc[1]); !errors.Is(err, ErrOffsetOutOfRange) {
			t.Errorf("DeleteText(%d, %d) err = %v, want ErrOffsetOutOfRange", tc[0], tc[1], err)
		}
	}
	if err := e.DeleteText(nil, 0, 1); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("DeleteText(nil) err = %v", err)
	}
}

func TestEditorTypingCompacts(t *testing.T) {
	e := mustOpen(t, "<p></p>")
	p := e.Root().FirstChild
	for i, r := range "hello" {
		if err := e.InsertText(p, i, string(r)); err != nil {
			t.Fatalf("InsertText failed: %v", err)
		}
	}
	e.DeleteText(p, 4, 1)
	e.Flush(nil)

	past := e.History().Past()
	ops := past[len(past)-1].Ops
	if len(ops) != 1 || ops[0].After != "hell" {
		t.Fatalf("ops = %+v, want a single insert of hell", ops)
	}
	e.Undo()
	if got := mustHTML(t, e); got != "<p></p>" {
		t.Errorf("after undo = %s", got)
	}
}

func TestEditorNodeEditing(t *testing.T) {
	const content = "<ul><li>a</li><li>c</li></ul>"

	t.Run("insert before", func(t *testing.T) {
		e := mustOpen(t, content)
		ul := e.Root().FirstChild
		li := NewElement("li")
		li.AppendChild(NewText("b"))
		if err := e.InsertNodeBefore(li, ul.LastChild); err != nil {
			t.Fatalf("InsertNodeBefore failed: %v", err)
		}
		e.Flush(nil)
		if got := mustHTML(t, e); got != "<ul><li>a</li><li>b</li><li>c</li></ul>" {
			t.Errorf("HTML = %s", got)
		}
		e.Undo()
		if got := mustHTML(t, e); got != content {
			t.Errorf("after undo = %s", got)
		}
	})

	t.Run("insert first and last", func(t *testing.T) {
		e := mustOpen(t, content)
		ul := e.Root().FirstChild
		if err := e.InsertNodeAtFirst(NewElement("li"), ul); err != nil {
			t.Fatalf("InsertNodeAtFirst failed: %v", err)
		}
		if err := e.InsertNodeLast(NewElement("li"), ul); err != nil {
			t.Fatalf("InsertNodeLast failed: %v", err)
		}
		e.Flush(nil)
		if got := mustHTML(t, e); got != "<ul><li></li><li>a</li><li>c</li><li></li></ul>" {
			t.Errorf("HTML = %s", got)
		}
		e.Undo()
		if got := mustHTML(t, e); got != content {
			t.Errorf("after undo = %s", got)
		}
	})

	t.Run("delete and redo", func(t *testing.T) {
		e := mustOpen(t, content)
		ul := e.Root().FirstChild
		last := ul.LastChild
		if err := e.DeleteNode(last); err != nil {
			t.Fatalf("DeleteNode failed: %v", err)
		}
		if err := e.DeleteNode(ul.FirstChild); err != nil {
			t.Fatalf("DeleteNode failed: %v", err)
		}
		e.Flush(nil)
		if got := mustHTML(t, e); got != "<ul></ul>" {
			t.Errorf("HTML = %s", got)
		}
		e.Undo()
		if got := mustHTML(t, e); got != content {
			t.Errorf("after undo = %s", got)
		}
		if ul.LastChild != last {
			t.Error("deleted node not restored by reference")
		}
		e.Redo()
		if got := mustHTML(t, e); got != "<ul></ul>" {
			t.Errorf("after redo = %s", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		e := mustOpen(t, content)
		ul := e.Root().FirstChild
		if err := e.InsertNode(NewElement("li"), ul, ul.FirstChild); !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("both anchors: err = %v", err)
		}
		if err := e.InsertNode(NewElement("li"), nil, nil); !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("no anchor: err = %v", err)
		}
		if err := e.InsertNodeLast(ul.FirstChild, ul); !errors.Is(err, ErrNodeAttached) {
			t.Errorf("attached node: err = %v", err)
		}
		if err := e.DeleteNode(NewElement("li")); !errors.Is(err, ErrNodeDetached) {
			t.Errorf("detached node: err = %v", err)
		}
		if err := e.DeleteNode(e.Root()); !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("root: err = %v", err)
		}
		if e.History().Pending() != 0 {
			t.Errorf("failed edits entered the batch")
		}
		if got := mustHTML(t, e); got != content {
			t.Errorf("tree changed: %s", got)
		}
	})
}

func TestEditorReinsertDeletedNode(t *testing.T) {
	e := mustOpen(t, "<p>a</p><p>b</p>")
	first := e.Root().FirstChild
	if err := e.DeleteNode(first); err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}
	if err := e.InsertNodeLast(first, e.Root()); err != nil {
		t.Fatalf("InsertNodeLast failed: %v", err)
	}
	e.Flush(nil)
	if got := mustHTML(t, e); got != "<p>b</p><p>a</p>" {
		t.Errorf("HTML = %s", got)
	}
	e.Undo()
	if got := mustHTML(t, e); got != "<p>a</p><p>b</p>" {
		t.Errorf("after undo = %s", got)
	}
}

func TestEditorIDs(t *testing.T) {
	e := mustOpen(t, "<p>a</p>")
	p := e.Root().FirstChild
	id := e.ID(p)
	if e.ID(p) != id {
		t.Error("ID is not stable")
	}
	n, err := e.Node(id)
	if err != nil || n != p {
		t.Errorf("Node(%d) = %v, %v", id, n, err)
	}
	if _, err := e.Node(id + 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("Node(unknown) err = %v", err)
	}
}

func TestEditorAttrStore(t *testing.T) {
	e := mustOpen(t, "<p>a</p>", WithIDStore(NewAttrStore("data-id")))
	p := e.Root().FirstChild
	if err := e.InsertText(p, 1, "b"); err != nil {
		t.Fatalf("InsertText failed: %v", err)
	}
	e.Flush(nil)
	out := mustHTML(t, e)
	if !strings.Contains(out, `data-id="`) || !strings.Contains(out, ">ab</p>") {
		t.Errorf("HTML = %s, want stamped <p> holding ab", out)
	}
	e.Undo()
	if got := TextContent(e.Root()); got != "a" {
		t.Errorf("after undo text = %q", got)
	}
}

// A caller driving the editor the way a browser input layer would:
// one batch per input event, cursor following the edits.
func TestEditorInputSession(t *testing.T) {
	sel := &MemorySelection{}
	e := mustOpen(t, "<p></p>", WithSelection(sel))
	p := e.Root().FirstChild

	typeText := func(offset int, s string) {
		t.Helper()
		if err := e.InsertText(p, offset, s); err != nil {
			t.Fatalf("InsertText failed: %v", err)
		}
		sel.Collapse(p.FirstChild, offset+len([]rune(s)))
		if err := e.Flush(nil); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}
	}

	typeText(0, "one")
	typeText(3, " two")
	para := NewElement("p")
	if err := e.InsertNodeLast(para, e.Root()); err != nil {
		t.Fatalf("InsertNodeLast failed: %v", err)
	}
	if err := e.InsertText(para, 0, "three"); err != nil {
		t.Fatalf("InsertText failed: %v", err)
	}
	sel.Collapse(para.FirstChild, 5)
	e.Flush(nil)

	if got := mustHTML(t, e); got != "<p>one two</p><p>three</p>" {
		t.Fatalf("HTML = %s", got)
	}
	if e.HistorySize() != 4 {
		t.Errorf("HistorySize = %d, want 4", e.HistorySize())
	}

	e.Undo()
	if got := mustHTML(t, e); got != "<p>one two</p>" {
		t.Errorf("after undo = %s", got)
	}
	if a, _, _ := sel.Current(); a.Node != p.FirstChild || a.Offset != 7 {
		t.Errorf("caret = %+v, want end of first paragraph", a)
	}
	if e.HistorySize() != 4 {
		t.Errorf("HistorySize after undo = %d, want 4", e.HistorySize())
	}

	e.Redo()
	if a, _, _ := sel.Current(); a.Node != para.FirstChild || a.Offset != 5 {
		t.Errorf("caret after redo = %+v", a)
	}

	if err := e.DiscardCurrent(); err != nil {
		t.Errorf("DiscardCurrent with nothing pending: %v", err)
	}
}

func TestEditorPaths(t *testing.T) {
	e := mustOpen(t, "<p>a</p><ul><li>x</li><li>y</li></ul>")

	li, err := e.NodeAt(NodePath{1, 1})
	if err != nil {
		t.Fatalf("NodeAt failed: %v", err)
	}
	if TextContent(li) != "y" {
		t.Errorf("NodeAt({1, 1}) text = %q, want y", TextContent(li))
	}
	path, err := e.PathOf(li)
	if err != nil {
		t.Fatalf("PathOf failed: %v", err)
	}
	if len(path) != 2 || path[0] != 1 || path[1] != 1 {
		t.Errorf("PathOf = %v, want [1 1]", path)
	}

	if _, err := e.NodeAt(NodePath{5}); !errors.Is(err, ErrNotFound) {
		t.Errorf("NodeAt(missing) err = %v, want ErrNotFound", err)
	}

	// Paths shift with edits while identifiers do not.
	id := e.ID(li)
	if err := e.InsertNodeAtFirst(NewElement("h1"), e.Root()); err != nil {
		t.Fatal(err)
	}
	if path, _ := e.PathOf(li); len(path) != 2 || path[0] != 2 {
		t.Errorf("PathOf after insert = %v, want [2 1]", path)
	}
	if n, _ := e.Node(id); n != li {
		t.Error("identifier no longer resolves to the same node")
	}

	if err := e.DeleteNode(li); err != nil {
		t.Fatal(err)
	}
	if _, err := e.PathOf(li); !errors.Is(err, ErrNodeDetached) {
		t.Errorf("PathOf(detached) err = %v, want ErrNodeDetached", err)
	}
}

func TestEditorKeepsEveryBatchByDefault(t *testing.T) {
	const commits = 1200
	e := mustOpen(t, "<p></p>")
	p := e.Root().FirstChild

	for i := 0; i < commits; i++ {
		if err := e.InsertText(p, i, "a"); err != nil {
			t.Fatalf("InsertText %d failed: %v", i, err)
		}
		if err := e.Flush(nil); err != nil {
			t.Fatalf("Flush %d failed: %v", i, err)
		}
	}
	if got := e.HistorySize(); got != commits+1 {
		t.Fatalf("HistorySize = %d, want %d", got, commits+1)
	}

	for e.History().CanUndo() {
		if err := e.Undo(); err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
	}
	if got := TextContent(p); got != "" {
		t.Errorf("text after undoing everything has %d chars, want 0", len(got))
	}
}

func TestEditorEmptyTextEditsRecordNothing(t *testing.T) {
	e := mustOpen(t, "<p></p>")
	p := e.Root().FirstChild

	if err := e.InsertText(p, 0, ""); err != nil {
		t.Fatalf("InsertText failed: %v", err)
	}
	if err := e.DeleteText(p, 0, 0); err != nil {
		t.Fatalf("DeleteText failed: %v", err)
	}
	if n := e.History().Pending(); n != 0 {
		t.Errorf("Pending = %d, want 0", n)
	}
	if p.FirstChild != nil {
		t.Error("empty edit created a text child")
	}

	// The offset is still checked for an empty delete.
	if err := e.DeleteText(p, 3, 0); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("DeleteText(3, 0) err = %v, want ErrOffsetOutOfRange", err)
	}
}
