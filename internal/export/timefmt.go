package export

import (
	"time"

	"mfdiff/internal/mfdiff"
)

// jst is the fixed UTC+9 zone report timestamps are interpreted in.
var jst = time.FixedZone("JST", 9*60*60)

// ToISO8601JST converts a "YYYY/MM/DD HH:MM" record timestamp into
// "YYYY-MM-DDTHH:MM:SS". The value is read as UTC+9 wall time and carries no
// offset. ok is false for anything unparsable, including the N/A sentinel.
func ToISO8601JST(s string) (string, bool) {
	t, err := time.ParseInLocation(mfdiff.TimestampLayout, s, jst)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02T15:04:05"), true
}

// isoOrNil is ToISO8601JST for JSON series: nil marshals as null.
func isoOrNil(s string) *string {
	v, ok := ToISO8601JST(s)
	if !ok {
		return nil
	}
	return &v
}
