package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// MonthlyFixture describes the dated tree built by NewMonthlyTree:
//
//	<base>/ref2024_08data/Main/InTheBox08-2024.xlsx
//	<base>/ref2024_08data/Main/Sub/Report08-2024.pdf
//	<base>/ref2024_12data/Main/...           (same files for 12-2024)
//	<base>/ref2025_01data/Main/...           (same files for 01-2025)
type MonthlyFixture struct {
	Base     string
	Template string
}

// NewMonthlyTree builds a three-month tree under a temporary directory and
// returns its base directory and the matching template.
func NewMonthlyTree(t *testing.T) MonthlyFixture {
	t.Helper()
	base := t.TempDir()

	months := []struct {
		year, month int
		folder      string
		mtime       time.Time
	}{
		{2024, 8, "ref2024_08data", time.Date(2024, 8, 31, 9, 15, 10, 0, time.Local)},
		{2024, 12, "ref2024_12data", time.Date(2024, 12, 31, 9, 15, 40, 0, time.Local)},
		{2025, 1, "ref2025_01data", time.Date(2025, 1, 31, 18, 0, 0, 0, time.Local)},
	}

	for _, m := range months {
		main := filepath.Join(base, m.folder, "Main")
		stamp := fmt.Sprintf("%02d-%d", m.month, m.year)
		WriteFile(t, filepath.Join(main, "InTheBox"+stamp+".xlsx"), []byte("data for "+stamp), m.mtime)
		WriteFile(t, filepath.Join(main, "Sub", "Report"+stamp+".pdf"), []byte("report "+stamp), m.mtime)
	}

	return MonthlyFixture{
		Base:     base,
		Template: filepath.Join(base, "ref{yyyy}_{mm}data", "Main"),
	}
}

// WriteFile creates path (and its parents) with content and sets its
// access and modification times to mtime when non-zero.
func WriteFile(t *testing.T, path string, content []byte, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("setting times: %v", err)
		}
	}
}
