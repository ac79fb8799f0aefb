// Package parser wraps go-tree-sitter's Python grammar behind a small,
// typed adapter: a Tree plus Node field/child accessors (spec.md §4.2,
// §6). Grounded on mache's internal/ingest/sitter_walker.go (SitterRoot /
// query-cache pattern) and internal/ingest/language.go (grammar
// selection), simplified to direct tree descent — the indexer needs typed
// walking of function/class/call/import nodes, not the schema-driven query
// DSL the teacher's generic ingestion engine requires.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Language returns the concrete grammar this adapter parses. Per spec.md
// §6, one concrete grammar must be chosen; ContextGraph targets Python,
// matching the system's original scope (spec.md §1) and the teacher's own
// first-class tree-sitter binding.
func Language() *sitter.Language {
	return python.GetLanguage()
}

// Tree is a parsed source file: the root node plus the bytes it was parsed
// from, needed to resolve any node's source text by byte range.
type Tree struct {
	Root   *Node
	Source []byte
}

// Node is a thin wrapper over *sitter.Node that exposes the accessors
// spec.md §4.2 requires: field-name lookup, child iteration, byte/point
// ranges, and type enumeration.
type Node struct {
	n      *sitter.Node
	source []byte
}

// Parse parses src as Python and returns the wrapped root node.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	p := sitter.NewParser()
	p.SetLanguage(Language())
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parser: parse: %w", err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parser: no root node produced")
	}
	return &Tree{Root: wrap(root, src), Source: src}, nil
}

func wrap(n *sitter.Node, source []byte) *Node {
	if n == nil {
		return nil
	}
	return &Node{n: n, source: source}
}

// Type returns the grammar node-type tag (e.g. "function_definition").
func (n *Node) Type() string { return n.n.Type() }

// IsNamed reports whether this node is a named grammar node (as opposed to
// an anonymous token like a punctuation literal).
func (n *Node) IsNamed() bool { return n.n.IsNamed() }

// ChildByFieldName locates a child by grammar field name (e.g. "body",
// "name", "superclasses"). Returns nil if absent.
func (n *Node) ChildByFieldName(field string) *Node {
	return wrap(n.n.ChildByFieldName(field), n.source)
}

// ChildCount returns the total number of children (named and anonymous).
func (n *Node) ChildCount() int { return int(n.n.ChildCount()) }

// Child returns the i-th child (named and anonymous together).
func (n *Node) Child(i int) *Node { return wrap(n.n.Child(i), n.source) }

// NamedChildCount returns the number of named children.
func (n *Node) NamedChildCount() int { return int(n.n.NamedChildCount()) }

// NamedChild returns the i-th named child.
func (n *Node) NamedChild(i int) *Node { return wrap(n.n.NamedChild(i), n.source) }

// Children returns every named child in order — the common case for
// post-order walks.
func (n *Node) Children() []*Node {
	count := n.NamedChildCount()
	out := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// ChildrenByType returns every direct named child whose Type() equals typ,
// in source order (spec.md §4.2's "enumerate children by node-type tag").
func (n *Node) ChildrenByType(typ string) []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}

// StartByte and EndByte give the byte offset range of this node in Source.
func (n *Node) StartByte() uint32 { return n.n.StartByte() }
func (n *Node) EndByte() uint32   { return n.n.EndByte() }

// Point is a (row, column) source position, 0-based.
type Point struct {
	Row    uint32
	Column uint32
}

// StartPoint and EndPoint give the (row, column) range of this node.
func (n *Node) StartPoint() Point {
	p := n.n.StartPoint()
	return Point{Row: p.Row, Column: p.Column}
}

func (n *Node) EndPoint() Point {
	p := n.n.EndPoint()
	return Point{Row: p.Row, Column: p.Column}
}

// Text returns this node's exact source text.
func (n *Node) Text() string {
	start, end := n.n.StartByte(), n.n.EndByte()
	if int(end) > len(n.source) || start > end {
		return ""
	}
	return string(n.source[start:end])
}

// Unwrap exposes the underlying *sitter.Node for callers that need the
// go-tree-sitter API directly.
func (n *Node) Unwrap() *sitter.Node { return n.n }

// Source returns the full byte buffer this node was parsed from.
func (n *Node) Source() []byte { return n.source }
