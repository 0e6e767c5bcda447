//go:build windows

package fs

import (
	"io/fs"
	"syscall"
	"time"
)

// birthTime returns the creation time recorded in the file attributes.
func birthTime(_ string, info fs.FileInfo) time.Time {
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}
	}
	return time.Unix(0, data.CreationTime.Nanoseconds())
}
