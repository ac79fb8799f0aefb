// Package skeleton replaces function and method bodies with an ellipsis
// placeholder while preserving docstrings and structure (spec.md §4.5) —
// the transform the capsule and resume renderers use to show a node's
// shape without its full body. Grounded on the traversal idiom of mache's
// internal/ingest/sitter_walker.go (typed node-field walking), applied as
// a byte-range splice rather than an extraction.
package skeleton

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/chrispaulintheory/ContextGraph/internal/parser"
)

type replacement struct {
	start, end uint32
	text       string
}

// Skeletonize parses src as Python and returns a copy with every function
// and method body collapsed to "..." (docstrings, if present as the body's
// first statement, are preserved ahead of the ellipsis).
func Skeletonize(ctx context.Context, src []byte) ([]byte, error) {
	tree, err := parser.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("skeleton: parse: %w", err)
	}

	var reps []replacement
	collect(tree.Root, &reps)

	sort.Slice(reps, func(i, j int) bool { return reps[i].start > reps[j].start })

	out := append([]byte(nil), src...)
	for _, r := range reps {
		if int(r.end) > len(out) || r.start > r.end {
			continue
		}
		var buf []byte
		buf = append(buf, out[:r.start]...)
		buf = append(buf, []byte(r.text)...)
		buf = append(buf, out[r.end:]...)
		out = buf
	}
	return out, nil
}

// collect walks n looking for function_definition nodes to skeletonize; it
// descends through class_definition bodies to reach methods but does not
// descend into a function body it has already scheduled for replacement.
func collect(n *parser.Node, out *[]replacement) {
	for _, c := range n.Children() {
		switch c.Type() {
		case "function_definition":
			if body := c.ChildByFieldName("body"); body != nil {
				*out = append(*out, skeletonizeBody(body))
			}
		case "class_definition":
			if body := c.ChildByFieldName("body"); body != nil {
				collect(body, out)
			}
		case "decorated_definition":
			def := c.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			switch def.Type() {
			case "function_definition":
				if body := def.ChildByFieldName("body"); body != nil {
					*out = append(*out, skeletonizeBody(body))
				}
			case "class_definition":
				if body := def.ChildByFieldName("body"); body != nil {
					collect(body, out)
				}
			}
		default:
			collect(c, out)
		}
	}
}

func skeletonizeBody(body *parser.Node) replacement {
	indent := strings.Repeat(" ", int(body.StartPoint().Column))
	stmts := body.Children()
	if len(stmts) > 0 {
		first := stmts[0]
		if first.Type() == "expression_statement" && first.NamedChildCount() > 0 && first.NamedChild(0).Type() == "string" {
			return replacement{start: first.EndByte(), end: body.EndByte(), text: "\n" + indent + "..."}
		}
	}
	return replacement{start: body.StartByte(), end: body.EndByte(), text: "..."}
}
