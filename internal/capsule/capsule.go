// Package capsule assembles a bounded markdown summary of a single Node
// (spec.md §4.7) from the Store, the graph-query layer, the skeletonizer,
// and observations. Grounded on mache's cmd/agent.go agentPromptTemplate,
// which builds a structured markdown document section-by-section from
// store state the same way.
package capsule

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/chrispaulintheory/ContextGraph/internal/observations"
	"github.com/chrispaulintheory/ContextGraph/internal/parser"
	"github.com/chrispaulintheory/ContextGraph/internal/skeleton"
	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

// FileOpener is the narrow file-read capability the parent-class-skeleton
// section needs — satisfied by a billy.Filesystem.
type FileOpener interface {
	Open(filename string) (billy.File, error)
}

// Renderer assembles capsules for nodes in one project's Store.
type Renderer struct {
	store *store.Store
	obs   *observations.Service
	fs    FileOpener
}

// New returns a Renderer backed by s, using fs to read source files for
// the parent-class-skeleton section.
func New(s *store.Store, fs FileOpener) *Renderer {
	return &Renderer{store: s, obs: observations.New(s), fs: fs}
}

// Render assembles the capsule for id, walking dependency/dependent edges
// out to depth hops. No budget is enforced; the document is whatever the
// nine sections yield (spec.md §4.7).
func (r *Renderer) Render(ctx context.Context, id string, depth int) (string, error) {
	node, err := r.store.GetNode(id)
	if err != nil {
		return "", fmt.Errorf("capsule: get_node %s: %w", id, err)
	}

	var b strings.Builder

	// 1. Title, kind, file, line range.
	fmt.Fprintf(&b, "# %s\n\n", node.Name)
	fmt.Fprintf(&b, "**Kind:** %s  \n**File:** %s  \n**Lines:** %d-%d\n\n", node.Kind, node.FilePath, node.LineStart, node.LineEnd)

	// 2. Signature.
	if node.Signature != "" {
		fmt.Fprintf(&b, "```python\n%s\n```\n\n", node.Signature)
	}

	// 3. Docstring.
	if node.Docstring != "" {
		for _, line := range strings.Split(node.Docstring, "\n") {
			fmt.Fprintf(&b, "> %s\n", line)
		}
		b.WriteString("\n")
	}

	// 4. Decorators.
	if len(node.Decorators) > 0 {
		b.WriteString("**Decorators:**\n\n")
		for _, d := range node.Decorators {
			fmt.Fprintf(&b, "- `@%s`\n", d)
		}
		b.WriteString("\n")
	}

	// 5. Parent class skeleton.
	if node.ParentID != "" {
		if parent, err := r.store.GetNode(node.ParentID); err == nil && parent.Kind == store.KindClass {
			b.WriteString("**Parent class:**\n\n```python\n")
			b.WriteString(r.renderParentSkeleton(ctx, parent))
			b.WriteString("\n```\n\n")
		}
	}

	// 6. Dependencies table.
	deps, err := r.edgeRows(id, forward, depth)
	if err != nil {
		return "", err
	}
	if len(deps) > 0 {
		b.WriteString("**Dependencies:**\n\n| Target | Kind |\n| --- | --- |\n")
		for _, d := range deps {
			fmt.Fprintf(&b, "| %s | %s |\n", d.other, d.kind)
		}
		b.WriteString("\n")
	}

	// 7. Dependents table.
	dependents, err := r.edgeRows(id, backward, depth)
	if err != nil {
		return "", err
	}
	if len(dependents) > 0 {
		b.WriteString("**Dependents:**\n\n| Source | Kind |\n| --- | --- |\n")
		for _, d := range dependents {
			fmt.Fprintf(&b, "| %s | %s |\n", d.other, d.kind)
		}
		b.WriteString("\n")
	}

	// 8. Linked observations.
	obs, err := r.obs.List(id, "")
	if err != nil {
		return "", fmt.Errorf("capsule: list observations %s: %w", id, err)
	}
	if len(obs) > 0 {
		b.WriteString("**Observations:**\n\n")
		for _, o := range obs {
			fmt.Fprintf(&b, "- (%s) %s\n", o.Source, o.Content)
		}
		b.WriteString("\n")
	}

	content := b.String()

	// 9. Token-estimate footer.
	fmt.Fprintf(&b, "_~%d tokens_\n", len(content)/4)
	return b.String(), nil
}

type edgeRow struct {
	other string
	kind  store.EdgeKind
}

type direction int

const (
	forward direction = iota
	backward
)

// edgeRows walks every edge kind outward from id up to depth hops,
// deduplicated by (other-id, kind) as spec.md §4.7 requires.
func (r *Renderer) edgeRows(id string, dir direction, depth int) ([]edgeRow, error) {
	if depth <= 0 {
		depth = 1
	}
	seenNodes := map[string]bool{id: true}
	seenEdges := map[edgeRow]bool{}
	var out []edgeRow

	frontier := []string{id}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, cur := range frontier {
			var f store.EdgeFilter
			if dir == forward {
				f.SourceID = cur
			} else {
				f.TargetID = cur
			}
			edges, err := r.store.GetEdges(f)
			if err != nil {
				return nil, fmt.Errorf("capsule: get_edges: %w", err)
			}
			for _, e := range edges {
				other := e.TargetID
				if dir == backward {
					other = e.SourceID
				}
				row := edgeRow{other: other, kind: e.Kind}
				if !seenEdges[row] {
					seenEdges[row] = true
					out = append(out, row)
				}
				if !seenNodes[other] {
					seenNodes[other] = true
					next = append(next, other)
				}
			}
		}
		frontier = next
	}
	return out, nil
}

// renderParentSkeleton reads parent's source file, skeletonizes it, and
// extracts the lines spanning the parent class's header through the end
// of its indented region. I/O or parse errors degrade to a single
// identifying line (spec.md §4.7).
func (r *Renderer) renderParentSkeleton(ctx context.Context, parent store.Node) string {
	f, err := r.fs.Open(parent.FilePath)
	if err != nil {
		return fmt.Sprintf("# %s (source unavailable: %v)", parent.Name, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Sprintf("# %s (source unavailable: %v)", parent.Name, err)
	}

	skeletonized, err := skeleton.Skeletonize(ctx, data)
	if err != nil {
		return fmt.Sprintf("# %s (skeleton unavailable: %v)", parent.Name, err)
	}

	tree, err := parser.Parse(ctx, skeletonized)
	if err != nil {
		return fmt.Sprintf("# %s (parse unavailable: %v)", parent.Name, err)
	}

	classNode := findClassByName(tree.Root, parent.Name)
	if classNode == nil {
		return fmt.Sprintf("# %s (class not found in skeleton)", parent.Name)
	}

	lines := strings.Split(string(skeletonized), "\n")
	start := int(classNode.StartPoint().Row)
	end := int(classNode.EndPoint().Row)
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if start < 0 || start > end {
		return fmt.Sprintf("# %s", parent.Name)
	}
	return strings.Join(lines[start:end+1], "\n")
}

func findClassByName(n *parser.Node, name string) *parser.Node {
	for _, c := range n.Children() {
		if c.Type() == "class_definition" {
			if nameNode := c.ChildByFieldName("name"); nameNode != nil && nameNode.Text() == name {
				return c
			}
		}
		if found := findClassByName(c, name); found != nil {
			return found
		}
	}
	return nil
}

