package indexer

import (
	"path/filepath"
	"strings"
)

// ModuleID derives a node id for the module synthesized for a source file
// (spec.md §4.3): the path relative to the project root, split on the
// separator, with the __init__ sentinel dropped at the leaf and the file
// extension stripped, joined with dots. This id prefixes every descendant
// node's id.
func ModuleID(projectRoot, filePath string) string {
	rel, err := filepath.Rel(projectRoot, filePath)
	if err != nil {
		rel = filePath
	}
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	if len(parts) == 0 {
		return ""
	}

	leaf := parts[len(parts)-1]
	ext := filepath.Ext(leaf)
	base := strings.TrimSuffix(leaf, ext)

	if base == "__init__" {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = base
	}
	return strings.Join(parts, ".")
}

// shortName returns the trailing dotted component of a qualified id — the
// module's unqualified name.
func shortName(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[i+1:]
	}
	return id
}
