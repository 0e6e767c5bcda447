package mfdiff

import "time"

// TimestampLayout is the display format of FileRecord timestamps.
const TimestampLayout = "2006/01/02 15:04"

// TimestampUnavailable marks a timestamp the platform could not provide.
const TimestampUnavailable = "N/A"

// FileRecord is one file observed while scanning one period's root.
type FileRecord struct {
	ActualName         string
	Size               int64
	Created            string // "YYYY/MM/DD HH:MM" or "N/A"
	Modified           string // "YYYY/MM/DD HH:MM" or "N/A"
	Period             Period
	PeriodLabel        string // "YYYY-MM"
	RelativePath       string // relative to the period root, '/' separated
	NormalizedIdentity string
}

// FormatTimestamp renders t in local time at minute precision the way file
// managers show it: seconds >= 30 round up to the next minute.
// A zero time yields TimestampUnavailable.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return TimestampUnavailable
	}
	t = t.Local()
	if t.Second() >= 30 {
		t = t.Add(time.Minute)
	}
	return t.Format(TimestampLayout)
}
