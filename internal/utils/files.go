package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
// The parent directory is created when missing.
func SafeWriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := EnsureDir(dir); err != nil {
			return fmt.Errorf("ensure dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
