package mfdiff

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder tokens recognized in path templates.
const (
	TokenYear  = "{yyyy}"
	TokenMonth = "{mm}"
	TokenDay   = "{dd}"
)

// ErrMalformedTemplate is returned when the pattern segment of a template
// cannot be compiled into a matching expression.
var ErrMalformedTemplate = errors.New("malformed template")

// ResolveTemplate substitutes every placeholder in template with the
// concrete values of p. Absent placeholders leave the text untouched.
func ResolveTemplate(template string, p Period) string {
	s := strings.ReplaceAll(template, TokenYear, fmt.Sprintf("%04d", p.Year))
	s = strings.ReplaceAll(s, TokenMonth, fmt.Sprintf("%02d", p.Month))
	return strings.ReplaceAll(s, TokenDay, fmt.Sprintf("%02d", p.Day))
}

// hasPlaceholder reports whether s contains any placeholder token.
func hasPlaceholder(s string) bool {
	return strings.Contains(s, TokenYear) || strings.Contains(s, TokenMonth) || strings.Contains(s, TokenDay)
}

func isSeparator(c byte) bool {
	return c == '/' || c == os.PathSeparator
}

// segment is one path component of a template together with its byte
// offsets in the template string.
type segment struct {
	text  string
	start int
}

// splitSegments splits a template into its non-empty components.
func splitSegments(template string) []segment {
	var segs []segment
	start := 0
	for i := 0; i <= len(template); i++ {
		if i < len(template) && !isSeparator(template[i]) {
			continue
		}
		if i > start {
			segs = append(segs, segment{text: template[start:i], start: start})
		}
		start = i + 1
	}
	return segs
}

// patternLocation names the directory to list and the segment whose text
// the directory entries are matched against.
type patternLocation struct {
	scanDir  string
	pattern  string
	fallback bool
}

// locatePatternSegment walks the template components from the leaf upward
// and stops at the first one carrying a placeholder. When no component
// does, the parent of the last component is used instead; that branch
// rarely matches anything and only exists for compatibility.
func locatePatternSegment(template string) (patternLocation, bool) {
	segs := splitSegments(template)
	if len(segs) == 0 {
		return patternLocation{}, false
	}

	const (
		stateSearching = iota
		stateFound
		stateFallback
	)

	state := stateSearching
	idx := len(segs) - 1
	for state == stateSearching {
		switch {
		case hasPlaceholder(segs[idx].text):
			state = stateFound
		case idx == 0:
			state = stateFallback
		default:
			idx--
		}
	}

	if state == stateFallback {
		idx = len(segs) - 2
		if idx < 0 {
			return patternLocation{}, false
		}
	}

	return patternLocation{
		scanDir:  parentDir(template, segs[idx].start),
		pattern:  segs[idx].text,
		fallback: state == stateFallback,
	}, true
}

// parentDir returns the directory that contains the component starting at
// offset start of template.
func parentDir(template string, start int) string {
	dir := template[:start]
	for len(dir) > 1 && isSeparator(dir[len(dir)-1]) {
		dir = dir[:len(dir)-1]
	}
	if dir == "" {
		return "."
	}
	return dir
}

// compileSegmentPattern turns a pattern segment into an anchored regular
// expression with named groups for the year, month and day.
func compileSegmentPattern(seg string) (*regexp.Regexp, error) {
	expr := regexp.QuoteMeta(seg)
	expr = strings.ReplaceAll(expr, regexp.QuoteMeta(TokenYear), `(?P<yyyy>\d{4})`)
	expr = strings.ReplaceAll(expr, regexp.QuoteMeta(TokenMonth), `(?P<mm>\d{1,2})`)
	expr = strings.ReplaceAll(expr, regexp.QuoteMeta(TokenDay), `(?P<dd>\d{1,2})`)

	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: segment %q: %v", ErrMalformedTemplate, seg, err)
	}
	return re, nil
}

// matchPeriod extracts a period from a directory entry name. The day
// defaults to 1 when the pattern carries no day group.
func matchPeriod(re *regexp.Regexp, name string) (Period, bool) {
	m := re.FindStringSubmatch(name)
	if m == nil {
		return Period{}, false
	}

	// A token may repeat within the segment; every capture of it must
	// carry the same value.
	values := make(map[string]int, 3)
	for i, group := range re.SubexpNames() {
		if group == "" {
			continue
		}
		v, err := strconv.Atoi(m[i])
		if err != nil {
			return Period{}, false
		}
		if prev, seen := values[group]; seen && prev != v {
			return Period{}, false
		}
		values[group] = v
	}

	year, haveYear := values["yyyy"]
	month, haveMonth := values["mm"]
	if !haveYear || !haveMonth {
		return Period{}, false
	}
	day, ok := values["dd"]
	if !ok {
		day = 1
	}
	return NewPeriod(year, month, day)
}
