package mfdiff

import "time"

// FileEntry is a regular file found below a scan root.
type FileEntry struct {
	RelPath    string // relative to the scan root, OS separators
	Name       string
	Size       int64
	ModifiedAt time.Time
	CreatedAt  time.Time // zero when the platform has no birth time
}

// FilesystemManager abstracts the directory reads the engine needs so it
// can be tested without touching the real filesystem.
type FilesystemManager interface {
	// Exists reports whether path exists.
	Exists(path string) bool

	// ReadDirNames lists the names of the immediate children of dir.
	ReadDirNames(dir string) ([]string, error)

	// FindFiles returns the regular files at most maxDepth levels below
	// root (depth 1 = direct children). Files whose metadata cannot be
	// read are left out. An error is returned only when root itself
	// cannot be read.
	FindFiles(root string, maxDepth int) ([]*FileEntry, error)
}
