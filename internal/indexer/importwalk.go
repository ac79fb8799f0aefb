package indexer

import (
	"github.com/chrispaulintheory/ContextGraph/internal/parser"
	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

// walkImports scans only the module's top-level statements (spec.md §4.3:
// "import walk is top-level only") for import_statement and
// import_from_statement nodes and emits imports edges from moduleID.
func walkImports(root *parser.Node, moduleID string, ctx *walkCtx) {
	for _, child := range root.Children() {
		switch child.Type() {
		case "import_statement":
			walkImportStatement(child, moduleID, ctx)
		case "import_from_statement":
			walkImportFromStatement(child, moduleID, ctx)
		}
	}
}

func walkImportStatement(n *parser.Node, moduleID string, ctx *walkCtx) {
	line := int(n.StartPoint().Row) + 1
	for _, c := range n.Children() {
		switch c.Type() {
		case "dotted_name":
			emitImport(moduleID, c.Text(), line, ctx)
		case "aliased_import":
			if name := c.ChildByFieldName("name"); name != nil {
				emitImport(moduleID, name.Text(), line, ctx)
			}
		}
	}
}

func walkImportFromStatement(n *parser.Node, moduleID string, ctx *walkCtx) {
	line := int(n.StartPoint().Row) + 1
	var modName string
	var symbols []string
	wildcard := false
	seenModName := false

	for _, c := range n.Children() {
		switch c.Type() {
		case "dotted_name":
			if !seenModName {
				modName = c.Text()
				seenModName = true
			} else {
				symbols = append(symbols, c.Text())
			}
		case "aliased_import":
			if name := c.ChildByFieldName("name"); name != nil {
				symbols = append(symbols, name.Text())
			}
		case "wildcard_import":
			wildcard = true
		}
	}
	if modName == "" {
		return
	}
	if wildcard || len(symbols) == 0 {
		emitImport(moduleID, modName, line, ctx)
		return
	}
	for _, sym := range symbols {
		emitImport(moduleID, modName+"."+sym, line, ctx)
	}
}

func emitImport(moduleID, target string, line int, ctx *walkCtx) {
	ctx.addEdge(store.Edge{
		SourceID: moduleID,
		TargetID: target,
		Kind:     store.EdgeImports,
		Line:     line,
	})
}
