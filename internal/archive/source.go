package archive

import (
	"io/fs"
	"os"
)

// Source gives the reader access to archive files.
// This abstraction allows tests to serve archives from memory.
//
// Implementations:
//   - dirSource: reads from the local filesystem (production)
//   - MockSource (tests): in-memory map of path -> bytes
type Source interface {
	// ReadFile reads the named archive and returns its contents.
	ReadFile(name string) ([]byte, error)

	// ReadDir lists the entries of the named directory.
	ReadDir(name string) ([]fs.DirEntry, error)
}

type dirSource struct{}

// NewDirSource returns a Source backed by the local filesystem.
func NewDirSource() Source {
	return dirSource{}
}

func (dirSource) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (dirSource) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}
