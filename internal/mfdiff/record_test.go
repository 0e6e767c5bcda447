package mfdiff

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"seconds below 30 truncate", time.Date(2024, 8, 15, 14, 29, 29, 999, time.Local), "2024/08/15 14:29"},
		{"30 seconds round up", time.Date(2024, 8, 15, 14, 29, 30, 0, time.Local), "2024/08/15 14:30"},
		{"round up crosses the day", time.Date(2024, 12, 31, 23, 59, 45, 0, time.Local), "2025/01/01 00:00"},
		{"exact minute", time.Date(2025, 1, 2, 3, 4, 0, 0, time.Local), "2025/01/02 03:04"},
		{"zero time", time.Time{}, TimestampUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
