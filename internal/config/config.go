package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for mfdiff.
type Config struct {
	Template   string           `toml:"template"`
	Dates      []string         `toml:"dates,omitempty"` // explicit periods, "YYYY-MM-DD"; empty = discover
	MaxDepth   int              `toml:"max_depth"`
	Workers    int              `toml:"workers"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Output     OutputConfig     `toml:"output"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// OutputConfig selects the artifacts written by a scan. Empty paths are
// skipped; CSVFile "-" writes to stdout.
type OutputConfig struct {
	CSVFile    string `toml:"csv_file"`
	Encoding   string `toml:"encoding"` // "utf8" (default), "shift_jis" or "utf16le"
	HTMLFile   string `toml:"html_file,omitempty"`
	XLSXFile   string `toml:"xlsx_file,omitempty"`
	SQLiteFile string `toml:"sqlite_file,omitempty"`
	Title      string `toml:"title,omitempty"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore     []string `toml:"ignore"`
	IgnoreFile string   `toml:"ignore_file,omitempty"`
}

// EncryptionConfig controls encryption of written artifacts.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
}

// DefaultIgnore lists transient files left next to the real documents.
var DefaultIgnore = []string{"~$*", "Thumbs.db", ".DS_Store", "desktop.ini"}

// NewConfig creates a new Config with default values rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		MaxDepth: 2,
		Workers:  1,
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		Output: OutputConfig{
			CSVFile:  "-",
			Encoding: "utf8",
			Title:    "File Info Charts",
		},
		Filesystem: FilesystemConfig{
			Ignore: append([]string(nil), DefaultIgnore...),
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "mfdiff.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "mfdiff.key"),
		},
	}
}

// Normalize clamps out-of-range values to their defaults.
func (c *Config) Normalize() {
	if c.MaxDepth < 1 {
		c.MaxDepth = 1
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Output.Encoding == "" {
		c.Output.Encoding = "utf8"
	}
	if c.Encryption.Type == "" {
		c.Encryption.Type = "none"
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader on top of base.
// Keys missing from the input keep the values already set in base.
func (m *Manager) Read(r io.Reader, base *Config) (*Config, error) {
	cfg := *base
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path on top of the
// defaults for baseDir.
func ReadFromFile(path, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f, NewConfig(baseDir))
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Load reads the config at path, or returns the defaults for baseDir when
// the file does not exist. A malformed file is an error.
func Load(path, baseDir string) (*Config, error) {
	cfg, err := ReadFromFile(path, baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewConfig(baseDir), nil
		}
		return nil, err
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
