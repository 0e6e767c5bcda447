//go:build linux

package fs

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime returns the creation time of path via statx, or the zero time
// when the filesystem does not record it.
func birthTime(path string, _ fs.FileInfo) time.Time {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
}
