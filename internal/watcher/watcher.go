// Package watcher implements the debounced file-system observer (spec.md
// §4.9): fsnotify events for source-extension files are coalesced per
// path behind a 500ms timer before driving Indexer.IndexFile /
// Indexer.RemoveFile. Grounded on the BeadsLog daemon_watcher.go event
// loop and per-unit debouncer, adapted from its bead-file polling model
// to a recursive project-tree watch with indexer-call semantics.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

const debounceDelay = 500 * time.Millisecond

// Indexer is the subset of *indexer.Indexer the watcher drives. Declared
// locally to avoid the watcher package depending on indexer's FileSystem
// plumbing.
type Indexer interface {
	IndexFile(ctx context.Context, projectRoot, path string, force bool) ([]store.Node, error)
	RemoveFile(path string) error
}

// Watcher observes root for changes to files with the given extension and
// drives idx accordingly, debounced per path.
type Watcher struct {
	root      string
	ext       string
	idx       Indexer
	ignoreDir func(name string) bool

	mu      sync.Mutex
	timers  map[string]*time.Timer
	actMu   sync.Mutex // serializes the debounced indexer actions themselves
	running bool

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
}

// New returns a Watcher rooted at root, matching files by ext (e.g.
// ".py"), skipping directories for which ignoreDir returns true.
func New(root, ext string, idx Indexer, ignoreDir func(string) bool) *Watcher {
	if ignoreDir == nil {
		ignoreDir = func(string) bool { return false }
	}
	return &Watcher{
		root:      root,
		ext:       ext,
		idx:       idx,
		ignoreDir: ignoreDir,
		timers:    make(map[string]*time.Timer),
	}
}

// Start schedules the observer. Idempotent: a second call on an already
// running Watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.addTree(fw, w.root); err != nil {
		_ = fw.Close()
		return err
	}

	w.fsWatcher = fw
	w.done = make(chan struct{})
	w.running = true

	w.wg.Add(1)
	go w.loop(fw)
	return nil
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	if err := fw.Add(dir); err != nil {
		return err
	}
	entries, err := readDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.isDir {
			continue
		}
		if w.ignoreDir(e.name) {
			continue
		}
		if err := w.addTree(fw, filepath.Join(dir, e.name)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) loop(fw *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: fsnotify error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !strings.EqualFold(filepath.Ext(ev.Name), w.ext) {
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	path := ev.Name
	remove := ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0

	w.mu.Lock()
	if existing, ok := w.timers[path]; ok {
		existing.Stop()
	}
	w.timers[path] = time.AfterFunc(debounceDelay, func() { w.fire(path, remove) })
	w.mu.Unlock()
}

func (w *Watcher) fire(path string, remove bool) {
	w.actMu.Lock()
	defer w.actMu.Unlock()

	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}

	if remove {
		if err := w.idx.RemoveFile(rel); err != nil {
			log.Printf("watcher: remove_file %s: %v", rel, err)
		}
		return
	}
	if _, err := w.idx.IndexFile(context.Background(), w.root, rel, false); err != nil {
		log.Printf("watcher: index_file %s: %v", rel, err)
	}
}

type dirEntry struct {
	name  string
	isDir bool
}

func readDir(dir string) ([]dirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, dirEntry{name: e.Name(), isDir: e.IsDir()})
	}
	return out, nil
}

// Stop cancels all pending timers, stops the observer, and joins it with
// a 5-second deadline. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	close(w.done)
	fw := w.fsWatcher
	w.running = false
	w.mu.Unlock()

	_ = fw.Close()

	joined := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(joined)
	}()
	select {
	case <-joined:
	case <-time.After(5 * time.Second):
		log.Printf("watcher: stop deadline exceeded, observer may still be winding down")
	}
}
