package indexer

import (
	"strings"

	"github.com/chrispaulintheory/ContextGraph/internal/parser"
	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

// walkSymbols is the post-order structural walk of spec.md §4.3: every
// function_definition and class_definition becomes a Node, decorators
// attach as decorates edges, superclasses attach as inherits edges, and
// the walk recurses into bodies so nested defs receive correct parent_id
// and methods are distinguished from functions by enclosure.
func walkSymbols(n *parser.Node, parentID string, inClass bool, ctx *walkCtx) {
	for _, child := range n.Children() {
		switch child.Type() {
		case "decorated_definition":
			decorators := extractDecorators(child)
			def := child.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			processDefinition(def, parentID, inClass, decorators, ctx)
		case "function_definition", "class_definition":
			processDefinition(child, parentID, inClass, nil, ctx)
		default:
			walkSymbols(child, parentID, inClass, ctx)
		}
	}
}

func extractDecorators(decorated *parser.Node) []string {
	var out []string
	for _, c := range decorated.Children() {
		if c.Type() != "decorator" {
			continue
		}
		text := strings.TrimPrefix(c.Text(), "@")
		out = append(out, strings.TrimSpace(text))
	}
	return out
}

func processDefinition(def *parser.Node, parentID string, inClass bool, decorators []string, ctx *walkCtx) {
	nameNode := def.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Text()
	id := name
	if parentID != "" {
		id = parentID + "." + name
	}
	lineStart := int(def.StartPoint().Row) + 1
	lineEnd := int(def.EndPoint().Row) + 1
	body := def.ChildByFieldName("body")

	switch def.Type() {
	case "function_definition":
		kind := store.KindFunction
		if inClass {
			kind = store.KindMethod
		}
		ctx.addNode(store.Node{
			ID:         id,
			Kind:       kind,
			Name:       name,
			LineStart:  lineStart,
			LineEnd:    lineEnd,
			ParentID:   parentID,
			Signature:  buildSignature(def, ctx.source),
			Docstring:  extractDocstring(body),
			Decorators: decorators,
		})
		addDecoratesEdges(id, decorators, lineStart, ctx)
		if body != nil {
			walkSymbols(body, id, false, ctx)
		}
	case "class_definition":
		ctx.addNode(store.Node{
			ID:         id,
			Kind:       store.KindClass,
			Name:       name,
			LineStart:  lineStart,
			LineEnd:    lineEnd,
			ParentID:   parentID,
			Docstring:  extractDocstring(body),
			Decorators: decorators,
		})
		addDecoratesEdges(id, decorators, lineStart, ctx)
		addInheritsEdges(id, def.ChildByFieldName("superclasses"), lineStart, ctx)
		if body != nil {
			walkSymbols(body, id, true, ctx)
		}
	}
}

func addDecoratesEdges(id string, decorators []string, line int, ctx *walkCtx) {
	for _, d := range decorators {
		ctx.addEdge(store.Edge{
			SourceID: id,
			TargetID: decoratorHead(d),
			Kind:     store.EdgeDecorates,
			Line:     line,
		})
	}
}

func addInheritsEdges(id string, superclasses *parser.Node, line int, ctx *walkCtx) {
	if superclasses == nil {
		return
	}
	for _, c := range superclasses.Children() {
		switch c.Type() {
		case "identifier", "attribute":
			ctx.addEdge(store.Edge{
				SourceID: id,
				TargetID: c.Text(),
				Kind:     store.EdgeInherits,
				Line:     line,
			})
		}
	}
}

// buildSignature slices the source from the definition's start to its
// body (or its end, for bodyless stubs), collapses interior whitespace to
// single spaces, and re-appends the trailing colon (spec.md §4.3).
func buildSignature(def *parser.Node, source []byte) string {
	start := def.StartByte()
	end := def.EndByte()
	if body := def.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	if int(end) > len(source) || start > end {
		return ""
	}
	raw := string(source[start:end])
	raw = strings.TrimRight(raw, " \t\r\n")
	raw = strings.TrimSuffix(raw, ":")
	raw = strings.TrimRight(raw, " \t\r\n")
	return strings.Join(strings.Fields(raw), " ") + ":"
}

// extractDocstring returns the body's first statement when it is a bare
// string literal, quote markers stripped (spec.md §4.3).
func extractDocstring(body *parser.Node) string {
	if body == nil {
		return ""
	}
	stmts := body.Children()
	if len(stmts) == 0 {
		return ""
	}
	first := stmts[0]
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	inner := first.NamedChild(0)
	if inner == nil || inner.Type() != "string" {
		return ""
	}
	return stripDocstringQuotes(inner.Text())
}
