package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRunHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		runID   string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			runID:   "run-123",
			level:   slog.LevelInfo,
			message: "scan complete",
			want:    "2024-06-15T14:30:45Z\tINFO\trun-123\tscan complete\n",
		},
		{
			name:    "warn level",
			runID:   "run-456",
			level:   slog.LevelWarn,
			message: "skipping missing period root",
			want:    "2024-06-15T14:30:45Z\tWARN\trun-456\tskipping missing period root\n",
		},
		{
			name:    "with record attrs",
			runID:   "run-789",
			level:   slog.LevelInfo,
			message: "artifact written",
			attrs:   []slog.Attr{slog.String("path", "/out/report.csv"), slog.Int("records", 42)},
			want:    "2024-06-15T14:30:45Z\tINFO\trun-789\tartifact written\tpath=/out/report.csv\trecords=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newRunHandler(&buf, tt.runID, nil)

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestRunHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newRunHandler(&buf, "run-1", nil)
	h.attrs = []slog.Attr{slog.String("a", "1")}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "export")}).(*runHandler)
	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}

	r := slog.NewRecord(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), slog.LevelInfo, "write", 0)
	r.AddAttrs(slog.String("key", "abc"))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{"a=1", "component=export", "key=abc"} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %s: %q", want, got)
		}
	}
}

// lineRecorder keeps every Write call separately.
type lineRecorder struct {
	mu     sync.Mutex
	writes []string
}

func (w *lineRecorder) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func TestRunHandler_ConcurrentRecordsStayWhole(t *testing.T) {
	rec := &lineRecorder{}
	logger := slog.New(newRunHandler(rec, "run-1", nil)).With("component", "collect")

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for i := range workers {
		wg.Go(func() {
			for j := range perWorker {
				logger.Info("collected files", "worker", i, "n", j, "root", "/data/2024-08/Main")
			}
		})
	}
	wg.Wait()

	if len(rec.writes) != workers*perWorker {
		t.Fatalf("got %d writes, want %d", len(rec.writes), workers*perWorker)
	}
	for _, line := range rec.writes {
		if strings.Count(line, "\n") != 1 || !strings.HasSuffix(line, "\n") {
			t.Fatalf("write is not one whole line: %q", line)
		}
		if fields := strings.Split(strings.TrimSuffix(line, "\n"), "\t"); len(fields) != 8 {
			t.Fatalf("line has %d fields, want 8: %q", len(fields), line)
		}
	}
}

func TestRunHandler_Enabled(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Leveler
		check slog.Level
		want  bool
	}{
		{name: "default drops debug", level: nil, check: slog.LevelDebug, want: false},
		{name: "default keeps info", level: nil, check: slog.LevelInfo, want: true},
		{name: "debug keeps debug", level: slog.LevelDebug, check: slog.LevelDebug, want: true},
		{name: "warn drops info", level: slog.LevelWarn, check: slog.LevelInfo, want: false},
		{name: "warn keeps error", level: slog.LevelWarn, check: slog.LevelError, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &runHandler{level: tt.level}
			if got := h.Enabled(context.Background(), tt.check); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.check, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	var stderr bytes.Buffer

	logger, f, err := newLogger(dir, "run-7", &stderr, false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("visible", "n", 1)
	f.Close()

	data, err := os.ReadFile(filepath.Join(dir, "mfdiff.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "\tINFO\trun-7\tvisible\tn=1") {
		t.Errorf("log file = %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("debug record written without verbose")
	}
	if stderr.String() != string(data) {
		t.Errorf("stderr = %q, want same as log file", stderr.String())
	}
}

func TestNewLogger_Verbose(t *testing.T) {
	logger, f, err := newLogger(t.TempDir(), "run-8", io.Discard, true)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("verbose logger should enable debug")
	}
}
