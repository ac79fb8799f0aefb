package indexer

import (
	"strings"

	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

// walkCtx accumulates the rows a single file's walks produce, plus the
// source bytes needed to slice out signatures and docstrings.
type walkCtx struct {
	filePath string
	fileHash string
	now      float64
	source   []byte

	nodes []store.Node
	edges []store.Edge
}

func (c *walkCtx) addNode(n store.Node) {
	n.FilePath = c.filePath
	n.FileHash = c.fileHash
	n.IndexedAt = c.now
	c.nodes = append(c.nodes, n)
}

func (c *walkCtx) addEdge(e store.Edge) {
	e.FilePath = c.filePath
	c.edges = append(c.edges, e)
}

func stripDocstringQuotes(raw string) string {
	i := 0
	for i < len(raw) && isASCIILetter(raw[i]) {
		i++
	}
	prefix, body := raw[:i], raw[i:]
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(body, q) && strings.HasSuffix(body, q) && len(body) >= 2*len(q) {
			return strings.TrimSpace(body[len(q) : len(body)-len(q)])
		}
	}
	return strings.TrimSpace(prefix + body)
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// decoratorHead returns the text before the first '(' of a stripped
// decorator expression, per spec.md §4.3's decorates-edge rule.
func decoratorHead(decorator string) string {
	if i := strings.Index(decorator, "("); i >= 0 {
		return strings.TrimSpace(decorator[:i])
	}
	return strings.TrimSpace(decorator)
}
