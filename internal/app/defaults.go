package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths are the default on-disk locations used when the config does not
// name them.
type Paths struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// Config returns override when non-empty and the default config path
// otherwise.
func (p Paths) Config(override string) string {
	if override != "" {
		return override
	}
	return p.ConfigPath
}

// GetDefaults resolves the default paths. Lookup order:
//   - config file: MFDIFF_CONFIG_PATH, $XDG_CONFIG_HOME/mfdiff.toml, ~/.config/mfdiff.toml
//   - data dir:    MFDIFF_HOME, $XDG_DATA_HOME/mfdiff, ~/.local/share/mfdiff
func GetDefaults() (Paths, error) {
	configPath, err := lookupPath("MFDIFF_CONFIG_PATH", "XDG_CONFIG_HOME", "mfdiff.toml", ".config")
	if err != nil {
		return Paths{}, err
	}
	baseDir, err := lookupPath("MFDIFF_HOME", "XDG_DATA_HOME", "mfdiff", ".local", "share")
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// lookupPath returns $env verbatim, else $xdgEnv/name, else
// ~/<homeParts...>/name.
func lookupPath(env, xdgEnv, name string, homeParts ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}
	if dir := os.Getenv(xdgEnv); filepath.IsAbs(dir) {
		return filepath.Join(dir, name), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	parts := append([]string{homeDir}, homeParts...)
	return filepath.Join(append(parts, name)...), nil
}
