package mfdiff

import "testing"

func TestResolveTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		period   Period
		want     string
	}{
		{
			name:     "year and month",
			template: "D:/data/参照{yyyy}_{mm}月データ/Main",
			period:   Period{2024, 8, 1},
			want:     "D:/data/参照2024_08月データ/Main",
		},
		{
			name:     "with day",
			template: "D:/backup/{yyyy}/{mm}/{dd}/files",
			period:   Period{2024, 12, 5},
			want:     "D:/backup/2024/12/05/files",
		},
		{
			name:     "repeated tokens",
			template: "/r/{yyyy}{mm}/{yyyy}-{mm}",
			period:   Period{2025, 1, 1},
			want:     "/r/202501/2025-01",
		},
		{
			name:     "no tokens",
			template: "/data/static",
			period:   Period{2025, 1, 1},
			want:     "/data/static",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTemplate(tt.template, tt.period); got != tt.want {
				t.Errorf("ResolveTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocatePatternSegment(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     patternLocation
		ok       bool
	}{
		{
			name:     "placeholder in parent of leaf",
			template: "/base/ref{yyyy}_{mm}data/Main",
			want:     patternLocation{scanDir: "/base", pattern: "ref{yyyy}_{mm}data"},
			ok:       true,
		},
		{
			name:     "deepest placeholder segment wins",
			template: "/backup/{yyyy}/{mm}-{yyyy}/files",
			want:     patternLocation{scanDir: "/backup/{yyyy}", pattern: "{mm}-{yyyy}"},
			ok:       true,
		},
		{
			name:     "placeholder in leaf",
			template: "/reports/{yyyy}-{mm}",
			want:     patternLocation{scanDir: "/reports", pattern: "{yyyy}-{mm}"},
			ok:       true,
		},
		{
			name:     "relative template",
			template: "ref{yyyy}_{mm}/Main",
			want:     patternLocation{scanDir: ".", pattern: "ref{yyyy}_{mm}"},
			ok:       true,
		},
		{
			name:     "segment directly under root",
			template: "/{yyyy}{mm}/Main",
			want:     patternLocation{scanDir: "/", pattern: "{yyyy}{mm}"},
			ok:       true,
		},
		{
			name:     "repeated separators",
			template: "/base//ref{yyyy}_{mm}//Main",
			want:     patternLocation{scanDir: "/base", pattern: "ref{yyyy}_{mm}"},
			ok:       true,
		},
		{
			name:     "no placeholder falls back to parent of leaf",
			template: "/base/static/Main",
			want:     patternLocation{scanDir: "/base", pattern: "static", fallback: true},
			ok:       true,
		},
		{
			name:     "no placeholder and no parent",
			template: "Main",
			ok:       false,
		},
		{
			name:     "empty",
			template: "",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := locatePatternSegment(tt.template)
			if ok != tt.ok {
				t.Fatalf("locatePatternSegment(%q) ok = %v, want %v", tt.template, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("locatePatternSegment(%q) = %+v, want %+v", tt.template, got, tt.want)
			}
		})
	}
}

func TestMatchPeriod(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		entry   string
		want    Period
		ok      bool
	}{
		{"monthly", "ref{yyyy}_{mm}data", "ref2024_08data", Period{2024, 8, 1}, true},
		{"single digit month", "ref{yyyy}_{mm}data", "ref2024_8data", Period{2024, 8, 1}, true},
		{"invalid month", "ref{yyyy}_{mm}data", "ref2024_99data", Period{}, false},
		{"three digit month", "ref{yyyy}_{mm}data", "ref2024_123data", Period{}, false},
		{"prefix only is not a match", "ref{yyyy}_{mm}data", "ref2024_08data.bak", Period{}, false},
		{"literal dot is escaped", "v{yyyy}.{mm}", "v2024x08", Period{}, false},
		{"literal dot", "v{yyyy}.{mm}", "v2024.08", Period{2024, 8, 1}, true},
		{"daily", "{yyyy}{mm}{dd}", "20241205", Period{2024, 12, 5}, true},
		{"daily invalid", "{yyyy}-{mm}-{dd}", "2024-02-30", Period{}, false},
		{"year only", "{yyyy}", "2024", Period{}, false},
		{"regex metacharacters", "(a+){yyyy}[{mm}]", "(a+)2025[01]", Period{2025, 1, 1}, true},
		{"repeated token agrees", "{mm}_{yyyy}_{mm}", "08_2024_08", Period{2024, 8, 1}, true},
		{"repeated token disagrees", "{mm}_{yyyy}_{mm}", "08_2024_09", Period{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := compileSegmentPattern(tt.segment)
			if err != nil {
				t.Fatalf("compileSegmentPattern(%q) error = %v", tt.segment, err)
			}
			got, ok := matchPeriod(re, tt.entry)
			if ok != tt.ok {
				t.Fatalf("matchPeriod(%q) ok = %v, want %v", tt.entry, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("matchPeriod(%q) = %v, want %v", tt.entry, got, tt.want)
			}
		})
	}
}

func TestCompileSegmentPattern_NeverMalformed(t *testing.T) {
	for _, seg := range []string{`\`, `(`, `[`, `{`, `}{yyyy}{`, `a|b{mm}`, `*?+`} {
		if _, err := compileSegmentPattern(seg); err != nil {
			t.Errorf("compileSegmentPattern(%q) error = %v", seg, err)
		}
	}
}
