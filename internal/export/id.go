package export

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// SanitizeID replaces every byte outside [A-Za-z0-9] with '_'.
func SanitizeID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// AnchorID returns a DOM id for identity. Sanitizing alone collides for
// identities differing only in non-ASCII characters, so a hash of the
// original string is appended.
func AnchorID(identity string) string {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return fmt.Sprintf("%s_%08x", SanitizeID(identity), h.Sum32())
}
