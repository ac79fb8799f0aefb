// Package project is the per-root registry of Project bundles (Store,
// Indexer, graph querier, observations, capsule and resume renderers,
// Watcher) (spec.md §5, §9): "the per-root map of Store instances is
// global mutable state with lifecycle tied to the server process;
// insert-if-absent discipline and a single construction lock suffice."
// Grounded on mache's cmd/mount.go Store-location convention
// (~/.${product}/...) and golang.org/x/sync/singleflight, used here to
// collapse concurrent Open calls for the same root into one construction.
package project

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sync/singleflight"

	"github.com/chrispaulintheory/ContextGraph/internal/capsule"
	"github.com/chrispaulintheory/ContextGraph/internal/graphquery"
	"github.com/chrispaulintheory/ContextGraph/internal/indexer"
	"github.com/chrispaulintheory/ContextGraph/internal/observations"
	"github.com/chrispaulintheory/ContextGraph/internal/resume"
	"github.com/chrispaulintheory/ContextGraph/internal/store"
	"github.com/chrispaulintheory/ContextGraph/internal/watcher"
)

const sourceExt = ".py"

// Project bundles every per-root service over one Store.
type Project struct {
	Root         string
	Store        *store.Store
	Indexer      *indexer.Indexer
	Graph        *graphquery.Querier
	Observations *observations.Service
	Capsule      *capsule.Renderer
	Resume       *resume.Renderer
	Watcher      *watcher.Watcher
}

// Registry is a process-wide, insert-if-absent map of Project by root.
type Registry struct {
	dataDir string

	mu       sync.Mutex
	projects map[string]*Project
	sf       singleflight.Group
}

// NewRegistry returns a Registry whose per-project SQLite files live
// under dataDir/projects/<hash>/context.db.
func NewRegistry(dataDir string) *Registry {
	return &Registry{dataDir: dataDir, projects: make(map[string]*Project)}
}

// Open returns the Project for root, constructing it on first use.
// Concurrent Open calls for the same root collapse into a single
// construction via singleflight; the result is cached under mu.
func (r *Registry) Open(root string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("project: abs %s: %w", root, err)
	}

	r.mu.Lock()
	if p, ok := r.projects[abs]; ok {
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	v, err, _ := r.sf.Do(abs, func() (any, error) {
		return r.construct(abs)
	})
	if err != nil {
		return nil, err
	}
	p := v.(*Project)

	r.mu.Lock()
	r.projects[abs] = p
	r.mu.Unlock()
	return p, nil
}

func (r *Registry) construct(root string) (*Project, error) {
	dbPath := StorePath(r.dataDir, root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("project: mkdir %s: %w", filepath.Dir(dbPath), err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	fs := osfs.New(root)
	ix := indexer.New(s, fs)
	graph := graphquery.New(s)
	obs := observations.New(s)
	cap := capsule.New(s, fs)
	res := resume.New(s, cap)
	w := watcher.New(root, sourceExt, ix, shouldIgnoreDataDir(r.dataDir))

	return &Project{
		Root:         root,
		Store:        s,
		Indexer:      ix,
		Graph:        graph,
		Observations: obs,
		Capsule:      cap,
		Resume:       res,
		Watcher:      w,
	}, nil
}

// Close stops root's watcher (if started) and closes its Store, removing
// it from the registry.
func (r *Registry) Close(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	r.mu.Lock()
	p, ok := r.projects[abs]
	delete(r.projects, abs)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	p.Watcher.Stop()
	return p.Store.Close()
}

// StorePath computes the per-project database path: dataDir/projects/
// <sha256(root)[:16]>/context.db (spec.md §6).
func StorePath(dataDir, root string) string {
	sum := sha256.Sum256([]byte(root))
	hash := hex.EncodeToString(sum[:])[:16]
	return filepath.Join(dataDir, "projects", hash, "context.db")
}

func shouldIgnoreDataDir(dataDir string) func(string) bool {
	name := filepath.Base(dataDir)
	return func(dir string) bool {
		if dir == "" {
			return false
		}
		if dir[0] == '.' {
			return true
		}
		switch dir {
		case "__pycache__", "venv", ".venv", "node_modules", ".git":
			return true
		}
		return dir == name
	}
}
