package testutil

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"mfdiff/internal/mfdiff"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Size       int64
	ModTime    time.Time
	BirthTime  time.Time // zero = unavailable
	Unreadable bool      // metadata cannot be read
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Paths are slash separated; parent directories exist implicitly.
type MockFilesystemManager struct {
	files      map[string]*MockFile
	dirs       map[string]bool
	unreadable map[string]bool
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:      make(map[string]*MockFile),
		dirs:       make(map[string]bool),
		unreadable: make(map[string]bool),
	}
}

// AddFile adds a file with the given size and both timestamps set to mtime.
func (m *MockFilesystemManager) AddFile(p string, size int64, mtime time.Time) *MockFile {
	f := &MockFile{Size: size, ModTime: mtime, BirthTime: mtime}
	m.files[path.Clean(p)] = f
	m.addParents(p)
	return f
}

// AddDirectory adds an (empty) directory.
func (m *MockFilesystemManager) AddDirectory(p string) {
	p = path.Clean(p)
	m.dirs[p] = true
	m.addParents(p)
}

// SetUnreadable makes reads of directory p fail.
func (m *MockFilesystemManager) SetUnreadable(p string) {
	m.unreadable[path.Clean(p)] = true
}

func (m *MockFilesystemManager) addParents(p string) {
	for dir := path.Dir(path.Clean(p)); dir != "." && dir != "/"; dir = path.Dir(dir) {
		m.dirs[dir] = true
	}
}

func (m *MockFilesystemManager) Exists(p string) bool {
	p = path.Clean(p)
	_, isFile := m.files[p]
	return isFile || m.dirs[p]
}

func (m *MockFilesystemManager) ReadDirNames(dir string) ([]string, error) {
	dir = path.Clean(dir)
	if !m.dirs[dir] || m.unreadable[dir] {
		return nil, fmt.Errorf("cannot read directory: %s", dir)
	}
	seen := make(map[string]bool)
	for p := range m.files {
		if path.Dir(p) == dir {
			seen[path.Base(p)] = true
		}
	}
	for p := range m.dirs {
		if path.Dir(p) == dir {
			seen[path.Base(p)] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *MockFilesystemManager) FindFiles(root string, maxDepth int) ([]*mfdiff.FileEntry, error) {
	root = path.Clean(root)
	if !m.dirs[root] || m.unreadable[root] {
		return nil, fmt.Errorf("cannot read directory: %s", root)
	}

	var entries []*mfdiff.FileEntry
	for p, f := range m.files {
		if !strings.HasPrefix(p, root+"/") {
			continue
		}
		rel := strings.TrimPrefix(p, root+"/")
		if strings.Count(rel, "/")+1 > maxDepth || f.Unreadable {
			continue
		}
		entries = append(entries, &mfdiff.FileEntry{
			RelPath:    rel,
			Name:       path.Base(p),
			Size:       f.Size,
			ModifiedAt: f.ModTime,
			CreatedAt:  f.BirthTime,
		})
	}
	return entries, nil
}

// Compile-time check
var _ mfdiff.FilesystemManager = (*MockFilesystemManager)(nil)
