// Package indexer implements the incremental syntactic indexer (spec.md
// §4.3): parse one file, extract modules/classes/functions/methods and
// their calls/imports/inherits/decorates edges, and keep the Store in sync
// as files change. Grounded on mache's internal/ingest/engine.go (Ingest /
// ingestFile / walk structure) and internal/ingest/sqlite_writer.go
// (purge-then-rewrite-in-one-transaction discipline), adapted from the
// teacher's schema-driven, multi-language ingestion target to ContextGraph's
// fixed four-table Python schema.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/chrispaulintheory/ContextGraph/internal/parser"
	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

// Indexer extracts structural nodes and edges from Python source files and
// keeps a Store's rows in sync with the file system.
type Indexer struct {
	store *store.Store
	fs    FileSystem
}

// New returns an Indexer writing to s and reading files through fs.
func New(s *store.Store, fs FileSystem) *Indexer {
	return &Indexer{store: s, fs: fs}
}

// IndexFile parses path (relative to projectRoot for module-id purposes)
// and replaces its rows in the Store. When force is false and the file's
// content hash matches the last indexed_files row, the file is skipped and
// its existing nodes are returned unchanged (spec.md §4.3's skip-check).
func (ix *Indexer) IndexFile(ctx context.Context, projectRoot, path string, force bool) ([]store.Node, error) {
	data, err := ix.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("indexer: read %s: %w", path, err)
	}
	hash := contentHash(data)

	if !force {
		if existing, err := ix.store.GetIndexedFile(path); err == nil && existing.FileHash == hash {
			return ix.store.ListNodes(store.NodeFilter{FilePath: path})
		}
	}

	tree, err := parser.Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("indexer: parse %s: %w", path, err)
	}

	moduleID := ModuleID(projectRoot, path)
	now := float64(time.Now().UnixNano()) / 1e9
	ctxw := &walkCtx{filePath: path, fileHash: hash, now: now, source: data}

	ctxw.addNode(store.Node{
		ID:        moduleID,
		Kind:      store.KindModule,
		Name:      shortName(moduleID),
		LineStart: 1,
		LineEnd:   countLines(data),
		Docstring: extractDocstring(tree.Root),
	})
	walkSymbols(tree.Root, moduleID, false, ctxw)
	walkImports(tree.Root, moduleID, ctxw)
	walkCalls(tree.Root, moduleID, ctxw)

	if err := ix.store.ReplaceFile(path, ctxw.nodes, ctxw.edges, store.IndexedFile{
		FilePath:  path,
		FileHash:  hash,
		IndexedAt: now,
		NodeCount: len(ctxw.nodes),
	}); err != nil {
		return nil, fmt.Errorf("indexer: replace_file %s: %w", path, err)
	}
	return ctxw.nodes, nil
}

// RemoveFile purges every row attributed to path: its nodes (cascading to
// descendants via parent_id), its edges, and its indexed_files row.
// Observations that referenced a removed node are unlinked, not deleted.
func (ix *Indexer) RemoveFile(path string) error {
	removed, err := ix.store.ListNodes(store.NodeFilter{FilePath: path})
	if err != nil {
		return fmt.Errorf("indexer: list nodes for removal %s: %w", path, err)
	}
	if _, err := ix.store.DeleteNodesForFile(path); err != nil {
		return fmt.Errorf("indexer: delete nodes %s: %w", path, err)
	}
	if _, err := ix.store.DeleteEdgesForFile(path); err != nil {
		return fmt.Errorf("indexer: delete edges %s: %w", path, err)
	}
	if err := ix.store.DeleteIndexedFile(path); err != nil {
		return fmt.Errorf("indexer: delete indexed_files %s: %w", path, err)
	}
	for _, n := range removed {
		if err := ix.store.UnlinkObservationsForNode(n.ID); err != nil {
			return fmt.Errorf("indexer: unlink observations for %s: %w", n.ID, err)
		}
	}
	return nil
}

func (ix *Indexer) readFile(path string) ([]byte, error) {
	f, err := ix.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := 1
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
