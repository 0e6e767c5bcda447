package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSink writes artifacts to the local filesystem. Names are paths.
type FileSink struct {
	stdout io.Writer
}

var _ Sink = (*FileSink)(nil)

func NewFileSink(stdout io.Writer) *FileSink {
	return &FileSink{stdout: stdout}
}

func (s *FileSink) Put(name string, r io.Reader) (string, error) {
	if name == Stdout {
		if _, err := io.Copy(s.stdout, r); err != nil {
			return "", fmt.Errorf("writing to stdout: %w", err)
		}
		return Stdout, nil
	}
	if err := writeFile(name, r); err != nil {
		return "", err
	}
	return name, nil
}

// writeFile writes r to destPath via a temp file in the same directory and
// a rename, so readers never observe a partial artifact.
func writeFile(destPath string, r io.Reader) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".mfdiff-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	// CreateTemp uses 0600.
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
