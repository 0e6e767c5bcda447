package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ignorePattern is a parsed ignore pattern with its matching strategy.
type ignorePattern struct {
	pattern   string
	matchPath bool // match against the relative path rather than the basename
	dirOnly   bool // pattern had a trailing '/'
}

// IgnoreMatcher decides which entries below a period root are left out of
// the inventory, e.g. Office lock files ("~$*") or thumbnail caches.
// Patterns without '/' match the basename only. Patterns with '/' match the
// full relative path from the period root. A trailing '/' restricts a
// pattern to directories.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		dirOnly := strings.HasSuffix(raw, "/")
		raw = strings.TrimSuffix(raw, "/")
		if raw == "" {
			continue
		}
		patterns = append(patterns, ignorePattern{
			pattern:   raw,
			matchPath: strings.Contains(raw, "/"),
			dirOnly:   dirOnly,
		})
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the entry at relativePath should be ignored.
// relativePath uses OS separators and is relative to the period root.
func (m *IgnoreMatcher) Match(relativePath string, isDir bool) bool {
	if len(m.patterns) == 0 || relativePath == "" {
		return false
	}

	normalized := filepath.ToSlash(relativePath)
	basename := filepath.Base(relativePath)

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		subject := basename
		if p.matchPath {
			subject = normalized
		}
		matched, err := filepath.Match(p.pattern, subject)
		if err != nil {
			continue // bad pattern
		}
		if matched {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern lines.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
