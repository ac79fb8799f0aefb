// Package config holds the small set of runtime settings the CLI binds
// to flags (spec.md explicitly scopes config-file loading out — see
// SPEC_FULL.md's ambient-stack section). Grounded on mache's
// cmd/mount.go flag/default layout: a flat struct of defaults, bound
// directly to cobra flags in cmd/contextgraph, no file-based layer.
package config

import (
	"os"
	"path/filepath"
)

// Config is the resolved set of values every subcommand needs.
type Config struct {
	// DataDir is the root directory holding per-project Store files
	// (spec.md §6: "~/.${product}/projects/<hash>/context.db").
	DataDir string
	// SourceExt is the file extension the indexer and watcher match
	// (spec.md §6 targets a Python-family grammar).
	SourceExt string
	// DefaultDepth is the graph-query / capsule traversal depth used
	// when a command does not override it.
	DefaultDepth int
	// DefaultBudget is the resume renderer's default token budget.
	DefaultBudget int
	// DefaultHours is the resume renderer's default lookback window.
	DefaultHours int
	// Concurrency bounds the indexer's concurrent file parsing during a
	// full project walk.
	Concurrency int
}

// Default returns the built-in defaults, with DataDir resolved against
// the current user's home directory.
func Default() Config {
	return Config{
		DataDir:       defaultDataDir(),
		SourceExt:     ".py",
		DefaultDepth:  2,
		DefaultBudget: 4000,
		DefaultHours:  24,
		Concurrency:   4,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".contextgraph")
}
