package indexer

import (
	"os"

	"github.com/go-git/go-billy/v5"
)

// FileSystem is the narrow slice of billy.Filesystem the indexer needs:
// open a file for reading, list a directory, and join path segments.
// Satisfied directly by billy.Filesystem (osfs.New(projectRoot) for a real
// tree, with every path relative to that root), keeping the indexer's project walk agnostic to
// where the bytes actually live — the same abstraction the teacher's own
// go.mod already carries for its NFS mount backing.
type FileSystem interface {
	Open(filename string) (billy.File, error)
	ReadDir(path string) ([]os.FileInfo, error)
	Join(elem ...string) string
}

var _ FileSystem = billy.Filesystem(nil)
