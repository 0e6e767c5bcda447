package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		Template: "/data/ref{yyyy}_{mm}data/Main",
		Dates:    []string{"2024-08-01", "2024-12-01"},
		MaxDepth: 3,
		Workers:  4,
		BaseDir:  "/home/user/.local/share/mfdiff",
		LogDir:   "/home/user/.local/share/mfdiff/log",
		Output: OutputConfig{
			CSVFile:    "out.csv",
			Encoding:   "shift_jis",
			HTMLFile:   "report.html",
			XLSXFile:   "report.xlsx",
			SQLiteFile: "report.db",
			Title:      "Monthly files",
		},
		Filesystem: FilesystemConfig{
			Ignore:     []string{"~$*", "backup/"},
			IgnoreFile: "/home/user/.mfdiffignore",
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/keys/mfdiff.pub",
			PrivateKeyPath: "/keys/mfdiff.key",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf, &Config{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Template != original.Template {
		t.Errorf("Template = %q, want %q", got.Template, original.Template)
	}
	if !slices.Equal(got.Dates, original.Dates) {
		t.Errorf("Dates = %v, want %v", got.Dates, original.Dates)
	}
	if got.MaxDepth != 3 || got.Workers != 4 {
		t.Errorf("MaxDepth, Workers = %d, %d, want 3, 4", got.MaxDepth, got.Workers)
	}
	if got.Output != original.Output {
		t.Errorf("Output = %+v, want %+v", got.Output, original.Output)
	}
	if !slices.Equal(got.Filesystem.Ignore, original.Filesystem.Ignore) {
		t.Errorf("Filesystem.Ignore = %v", got.Filesystem.Ignore)
	}
	if got.Filesystem.IgnoreFile != original.Filesystem.IgnoreFile {
		t.Errorf("Filesystem.IgnoreFile = %q", got.Filesystem.IgnoreFile)
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
}

func TestManager_Read_KeepsDefaultsForMissingKeys(t *testing.T) {
	m := &Manager{}
	input := "template = \"/data/{yyyy}{mm}\"\n[output]\nhtml_file = \"r.html\"\n"

	got, err := m.Read(strings.NewReader(input), NewConfig("/base"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Template != "/data/{yyyy}{mm}" {
		t.Errorf("Template = %q", got.Template)
	}
	if got.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want default 2", got.MaxDepth)
	}
	if got.Output.CSVFile != "-" || got.Output.HTMLFile != "r.html" {
		t.Errorf("Output = %+v", got.Output)
	}
}

func TestManager_Read_Malformed(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("max_depth = \"deep\""), NewConfig("/base")); err == nil {
		t.Fatal("Read() expected error for malformed config")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/mfdiff")

	if cfg.BaseDir != "/data/mfdiff" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/mfdiff")
	}
	if cfg.LogDir != "/data/mfdiff/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/mfdiff/log")
	}
	if cfg.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", cfg.MaxDepth)
	}
	if cfg.Output.CSVFile != "-" || cfg.Output.Encoding != "utf8" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want none", cfg.Encryption.Type)
	}
	if cfg.Encryption.PublicKeyPath != "/data/mfdiff/keys/mfdiff.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q", cfg.Encryption.PublicKeyPath)
	}
	if !slices.Equal(cfg.Filesystem.Ignore, DefaultIgnore) {
		t.Errorf("Filesystem.Ignore = %v", cfg.Filesystem.Ignore)
	}

	cfg.Filesystem.Ignore[0] = "changed"
	if DefaultIgnore[0] == "changed" {
		t.Error("NewConfig shares DefaultIgnore backing array")
	}
}

func TestConfig_Normalize(t *testing.T) {
	cfg := &Config{MaxDepth: 0, Workers: -3}
	cfg.Normalize()

	if cfg.MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1", cfg.MaxDepth)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
	if cfg.Output.Encoding != "utf8" || cfg.Encryption.Type != "none" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mfdiff.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mfdiff.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mfdiff.toml")
		cfg := NewConfig(dir)
		cfg.Template = "/data/{yyyy}-{mm}"
		cfg.MaxDepth = 0

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path, dir)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Template != "/data/{yyyy}-{mm}" {
			t.Errorf("Template = %q", got.Template)
		}
		if got.MaxDepth != 1 {
			t.Errorf("MaxDepth = %d, want clamped 1", got.MaxDepth)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/mfdiff.toml", "/base")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load(filepath.Join(dir, "absent.toml"), dir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.BaseDir != dir || cfg.MaxDepth != 2 {
			t.Errorf("Load() = %+v", cfg)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.toml")
		if err := os.WriteFile(path, []byte("template = ["), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path, dir); err == nil {
			t.Fatal("Load() expected error for malformed file")
		}
	})
}
