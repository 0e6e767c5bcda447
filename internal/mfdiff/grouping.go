package mfdiff

import (
	"iter"
	"maps"
	"slices"
)

// SkippedPeriod is a period whose resolved root did not exist.
type SkippedPeriod struct {
	Period Period
	Root   string
}

// Grouping maps normalized identities to the records sharing them, one
// record per period the identity appeared in. It is built by Service.Scan
// and read-only afterwards.
type Grouping struct {
	groups  map[string][]FileRecord
	periods []Period
	skipped []SkippedPeriod
}

func newGrouping() *Grouping {
	return &Grouping{groups: make(map[string][]FileRecord)}
}

// add folds one record into its identity's series.
func (g *Grouping) add(r FileRecord) {
	g.groups[r.NormalizedIdentity] = append(g.groups[r.NormalizedIdentity], r)
}

// finish orders every series by period so output does not depend on
// traversal or merge order.
func (g *Grouping) finish() {
	for _, records := range g.groups {
		slices.SortStableFunc(records, func(a, b FileRecord) int {
			if c := a.Period.Compare(b.Period); c != 0 {
				return c
			}
			return cmpString(a.RelativePath, b.RelativePath)
		})
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Keys returns the identities in lexicographic order.
func (g *Grouping) Keys() []string {
	return slices.Sorted(maps.Keys(g.groups))
}

// Records returns the series for identity ordered by period.
func (g *Grouping) Records(identity string) []FileRecord {
	return slices.Clone(g.groups[identity])
}

// All iterates over identities in key order.
func (g *Grouping) All() iter.Seq2[string, []FileRecord] {
	return func(yield func(string, []FileRecord) bool) {
		for _, k := range g.Keys() {
			if !yield(k, g.groups[k]) {
				return
			}
		}
	}
}

// Len returns the number of identities.
func (g *Grouping) Len() int {
	return len(g.groups)
}

// RecordCount returns the total number of records across all identities.
func (g *Grouping) RecordCount() int {
	n := 0
	for _, records := range g.groups {
		n += len(records)
	}
	return n
}

// Periods returns the periods whose roots were scanned, ascending.
func (g *Grouping) Periods() []Period {
	return slices.Clone(g.periods)
}

// Skipped returns the periods whose roots were missing.
func (g *Grouping) Skipped() []SkippedPeriod {
	return slices.Clone(g.skipped)
}
