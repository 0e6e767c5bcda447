package testutil

import (
	"time"

	"mfdiff/internal/mfdiff"
)

// SampleTemplate is the template scanned by SampleGrouping.
const SampleTemplate = "/data/{yyyy}-{mm}/Main"

// SampleGrouping scans a small in-memory tree:
//
//	/data/2024-08/Main/InTheBox08-2024.xlsx      1200 bytes
//	/data/2024-08/Main/Sub/Report08-2024.pdf     2048 bytes
//	/data/2024-09/Main/InTheBox09-2024.xlsx      1300 bytes
//	/data/2024-10/Main                           missing, skipped
func SampleGrouping() *mfdiff.Grouping {
	fsmgr := NewMockFilesystemManager()
	aug := time.Date(2024, 8, 31, 9, 15, 10, 0, time.Local)
	sep := time.Date(2024, 9, 30, 17, 45, 50, 0, time.Local)

	fsmgr.AddFile("/data/2024-08/Main/InTheBox08-2024.xlsx", 1200, aug)
	fsmgr.AddFile("/data/2024-08/Main/Sub/Report08-2024.pdf", 2048, aug)
	fsmgr.AddFile("/data/2024-09/Main/InTheBox09-2024.xlsx", 1300, sep)

	svc := mfdiff.NewService(fsmgr, mfdiff.NewNopLogger(), 1)
	return svc.Scan(SampleTemplate, mfdiff.ParsePeriodList("2024-08-01,2024-09-01,2024-10-01"), 2)
}
