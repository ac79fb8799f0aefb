package indexer

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ignoredDirs mirrors mache's internal/ingest/engine.go Ingest walk: hidden
// directories and common dependency/build output are skipped outright.
// node_modules and .git are ContextGraph-relevant additions beyond the
// teacher's own list, since a Python project's ignore set differs from a
// polyglot one.
var ignoredDirs = map[string]bool{
	"__pycache__": true,
	".venv":       true,
	"venv":        true,
	"node_modules": true,
	".git":        true,
}

func shouldIgnoreDir(name string) bool {
	if name == "" {
		return false
	}
	if name[0] == '.' {
		return true
	}
	return ignoredDirs[name]
}

// IndexProject walks root for .py files (skipping dirs per shouldIgnoreDir)
// and indexes each one. Files are parsed concurrently, bounded by
// concurrency, with each file's Store writes serialized through Store's own
// write mutex — concurrent fan-out across distinct paths is safe because no
// two in-flight indexFile calls ever target the same path (spec.md §5).
func (ix *Indexer) IndexProject(ctx context.Context, root string, force bool, concurrency int) ([]string, error) {
	paths, err := ix.collectPaths(root, ".")
	if err != nil {
		return nil, fmt.Errorf("indexer: walk %s: %w", root, err)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if _, err := ix.IndexFile(gctx, root, p, force); err != nil {
				log.Printf("indexer: skipping %s: %v", p, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (ix *Indexer) collectPaths(root, dir string) ([]string, error) {
	entries, err := ix.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		full := ix.fs.Join(dir, name)
		if e.IsDir() {
			if shouldIgnoreDir(name) {
				continue
			}
			nested, err := ix.collectPaths(root, full)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".py") {
			out = append(out, full)
		}
	}
	return out, nil
}
