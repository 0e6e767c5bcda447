package mfdiff

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeFileName replaces the date-derived parts of a file name with
// placeholder tokens. It runs two literal passes in a fixed order: the
// four-digit year first, then the zero-padded month on the result of the
// first pass. Any occurrence is replaced, including coincidental ones.
func NormalizeFileName(name string, year, month int) string {
	withYear := strings.ReplaceAll(name, strconv.Itoa(year), TokenYear)
	return strings.ReplaceAll(withYear, fmt.Sprintf("%02d", month), TokenMonth)
}

// NormalizeRelPath normalizes only the final component of relPath.
// Directory components are kept verbatim. Both '/' and '\' are accepted as
// separators on input; the output always uses '/'.
func NormalizeRelPath(relPath string, year, month int) string {
	slashed := strings.ReplaceAll(relPath, `\`, "/")
	i := strings.LastIndex(slashed, "/")
	if i < 0 {
		return NormalizeFileName(slashed, year, month)
	}
	dir, file := slashed[:i], slashed[i+1:]
	normalized := NormalizeFileName(file, year, month)
	if dir == "" {
		return normalized
	}
	return dir + "/" + normalized
}
