package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mfdiff/internal/mfdiff"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem and leaves out paths matching ignorePatterns.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// Exists reports whether path exists.
func (m *OSFilesystemManager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadDirNames lists the names of the immediate children of dir.
func (m *OSFilesystemManager) ReadDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// FindFiles discovers regular files at most maxDepth levels below root.
// Directories that cannot be read and files whose metadata cannot be read
// are skipped; only an unreadable root is reported.
// A root that is a symlink is followed; links below it are not.
func (m *OSFilesystemManager) FindFiles(root string, maxDepth int) ([]*mfdiff.FileEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}
	// WalkDir does not descend into a symlinked root.
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	var entries []*mfdiff.FileEntry
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if p == root {
			return err
		}
		if err != nil {
			// Unreadable subdirectory or vanished entry.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		if m.ignore.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if d.IsDir() {
			if depth >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		entries = append(entries, &mfdiff.FileEntry{
			RelPath:    rel,
			Name:       d.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
			CreatedAt:  birthTime(p, info),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return entries, nil
}

// Compile-time check that OSFilesystemManager implements mfdiff.FilesystemManager interface
var _ mfdiff.FilesystemManager = (*OSFilesystemManager)(nil)
