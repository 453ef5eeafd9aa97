package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists catalog files under a base directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created
// on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the path a catalog name maps to.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether a catalog file is already present.
func (s *FileStore) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Write persists lines as UTF-8 text, one per line with a trailing
// newline. An empty line set creates no file. A file already on disk is
// left untouched regardless of its content.
func (s *FileStore) Write(name string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
