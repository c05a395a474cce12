package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirSource serves blobs from a directory on the local filesystem.
type DirSource struct {
	root string
}

// NewDirSource creates a Source rooted at the given directory. The
// directory must exist; a feed pointed at a missing directory is a
// deployment error we want to surface at startup, not at first read.
func NewDirSource(root string) (*DirSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("blob: stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("blob: %s is not a directory", root)
	}
	return &DirSource{root: root}, nil
}

// Exists reports whether the named file is present under the root.
func (s *DirSource) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(name)))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("blob: stat %s: %w", name, err)
}

// Open returns a reader over the named file.
func (s *DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("blob: open %s: %w", name, err)
	}
	return f, nil
}
