//go:build darwin || freebsd || netbsd

package fs

import (
	"io/fs"
	"syscall"
	"time"
)

// birthTime returns the creation time recorded in the stat data.
func birthTime(_ string, info fs.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}
	return time.Unix(int64(stat.Birthtimespec.Sec), int64(stat.Birthtimespec.Nsec))
}
