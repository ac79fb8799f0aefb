package indexer

import (
	"github.com/chrispaulintheory/ContextGraph/internal/parser"
	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

// walkCalls tracks the enclosing function/class scope as it descends the
// tree and emits a calls edge from the current scope for every call
// expression it passes (spec.md §4.3). Scope ids mirror the symbol walk's
// id scheme so calls attribute to the same node the symbol walk created.
func walkCalls(n *parser.Node, scopeID string, ctx *walkCtx) {
	switch n.Type() {
	case "function_definition", "class_definition":
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		newScope := nameNode.Text()
		if scopeID != "" {
			newScope = scopeID + "." + newScope
		}
		if body := n.ChildByFieldName("body"); body != nil {
			walkCalls(body, newScope, ctx)
		}
	case "call":
		if fn := n.ChildByFieldName("function"); fn != nil {
			ctx.addEdge(store.Edge{
				SourceID: scopeID,
				TargetID: fn.Text(),
				Kind:     store.EdgeCalls,
				Line:     int(n.StartPoint().Row) + 1,
			})
		}
		for _, c := range n.Children() {
			walkCalls(c, scopeID, ctx)
		}
	default:
		for _, c := range n.Children() {
			walkCalls(c, scopeID, ctx)
		}
	}
}
