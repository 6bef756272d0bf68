package playback

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Store is the persistence abstraction for uploaded video files.
// The Service uses Store for all writes and removals; probing reads the file
// back from the path returned by Save, so Save must not return before the
// bytes are durably on disk.
type Store interface {
	// Save writes the full contents of r under name and returns the absolute
	// path of the stored file.
	Save(name string, r io.Reader) (string, error)

	// Remove deletes the stored file. Removing a file that does not exist is
	// not an error.
	Remove(name string) error

	// Path returns the location a stored file would have, without checking
	// that it exists.
	Path(name string) string
}

// DiskStore stores uploads as plain files in a single directory.
// Writes go through a temp file that is fsynced and renamed into place, so a
// crashed upload never leaves a partial file under the final name.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed and returns a store rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create video dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the directory uploads are stored in.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save implements Store.Save.
func (s *DiskStore) Save(name string, r io.Reader) (string, error) {
	path := s.Path(name)

	f, err := renameio.TempFile(s.dir, path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = f.Cleanup() }() // no-op after a successful replace

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("persist upload: %w", err)
	}
	return path, nil
}

// Remove implements Store.Remove.
func (s *DiskStore) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path implements Store.Path. The name is reduced to its base so a crafted
// filename cannot escape the video directory.
func (s *DiskStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
