//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package fs

import (
	"io/fs"
	"time"
)

// birthTime is unavailable on this platform.
func birthTime(string, fs.FileInfo) time.Time {
	return time.Time{}
}
