package mfdiff

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
)

// DefaultMaxDepth is the number of directory levels scanned below each
// period root when nothing else is configured.
const DefaultMaxDepth = 2

// Service discovers periods from a template, scans each period root and
// groups the files found by normalized identity.
type Service struct {
	fsmgr   FilesystemManager
	logger  Logger
	workers int
}

// NewService creates a Service. workers > 1 scans period roots
// concurrently; the result is the same as a sequential scan.
func NewService(fsmgr FilesystemManager, logger Logger, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		fsmgr:   fsmgr,
		logger:  logger,
		workers: workers,
	}
}

// DiscoverPeriods lists the periods for which template's pattern segment
// matches an existing sibling directory entry, in ascending order.
// An unreadable scan directory yields no periods and no error.
func (s *Service) DiscoverPeriods(template string) ([]Period, error) {
	loc, ok := locatePatternSegment(template)
	if !ok {
		s.logger.Warn("template has no directory component to match", "template", template)
		return nil, nil
	}
	if loc.fallback {
		s.logger.Warn("template has no placeholder; matching parent directory literally",
			"template", template, "segment", loc.pattern)
	}

	re, err := compileSegmentPattern(loc.pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern for %s: %w", template, err)
	}

	names, err := s.fsmgr.ReadDirNames(loc.scanDir)
	if err != nil {
		s.logger.Warn("cannot read scan directory", "dir", loc.scanDir, "error", err)
		return nil, nil
	}

	var periods []Period
	for _, name := range names {
		if !re.MatchString(name) {
			continue
		}
		p, ok := matchPeriod(re, name)
		if !ok {
			s.logger.Debug("skipping entry with invalid date", "dir", loc.scanDir, "name", name)
			continue
		}
		periods = append(periods, p)
	}

	slices.SortStableFunc(periods, Period.Compare)
	s.logger.Debug("discovered periods", "dir", loc.scanDir, "pattern", loc.pattern, "count", len(periods))
	return periods, nil
}

// Collect scans root down to maxDepth levels and builds one record per
// regular file. Files with unreadable metadata are skipped; an unreadable
// root yields no records. The order of the result is unspecified.
func (s *Service) Collect(root string, period Period, maxDepth int) []FileRecord {
	if maxDepth < 1 {
		maxDepth = 1
	}

	entries, err := s.fsmgr.FindFiles(root, maxDepth)
	if err != nil {
		s.logger.Warn("cannot read period root", "root", root, "error", err)
		return nil
	}

	label := period.Label()
	records := make([]FileRecord, 0, len(entries))
	for _, e := range entries {
		rel := filepath.ToSlash(e.RelPath)
		records = append(records, FileRecord{
			ActualName:         e.Name,
			Size:               e.Size,
			Created:            FormatTimestamp(e.CreatedAt),
			Modified:           FormatTimestamp(e.ModifiedAt),
			Period:             period,
			PeriodLabel:        label,
			RelativePath:       rel,
			NormalizedIdentity: NormalizeRelPath(rel, period.Year, period.Month),
		})
	}

	s.logger.Debug("collected files", "root", root, "period", period.String(), "count", len(records))
	return records
}

// Scan resolves every period against template, collects its files and
// groups them by normalized identity. Periods whose root does not exist
// are skipped and reported through Grouping.Skipped.
func (s *Service) Scan(template string, periods []Period, maxDepth int) *Grouping {
	ordered := slices.Clone(periods)
	slices.SortStableFunc(ordered, Period.Compare)

	g := newGrouping()
	var roots []string
	var scanned []Period
	for _, p := range ordered {
		root := ResolveTemplate(template, p)
		if !s.fsmgr.Exists(root) {
			s.logger.Warn("skipping missing period root", "period", p.String(), "root", root)
			g.skipped = append(g.skipped, SkippedPeriod{Period: p, Root: root})
			continue
		}
		roots = append(roots, root)
		scanned = append(scanned, p)
	}
	g.periods = scanned

	for _, records := range s.collectAll(roots, scanned, maxDepth) {
		for _, r := range records {
			g.add(r)
		}
	}
	g.finish()

	s.logger.Info("scan complete",
		"periods", len(scanned), "skipped", len(g.skipped),
		"identities", g.Len(), "records", g.RecordCount())
	return g
}

// collectAll collects each root into its own slot; the caller folds the
// slots in period order after every walk has finished.
func (s *Service) collectAll(roots []string, periods []Period, maxDepth int) [][]FileRecord {
	results := make([][]FileRecord, len(roots))
	if s.workers == 1 || len(roots) < 2 {
		for i, root := range roots {
			results[i] = s.Collect(root, periods[i], maxDepth)
		}
		return results
	}

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, root := range roots {
		wg.Go(func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.Collect(root, periods[i], maxDepth)
		})
	}
	wg.Wait()
	return results
}
