package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirMode is the mode of directories created by this package.
const DefaultDirMode os.FileMode = 0o755

// EnsureDir creates path and its parents with DefaultDirMode. An existing
// directory is not an error.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, DefaultDirMode); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// EnsureDirForFile creates the parent directory of filePath.
func EnsureDirForFile(filePath string) error {
	if err := EnsureDir(filepath.Dir(filePath)); err != nil {
		return fmt.Errorf("ensure dir for %s: %w", filePath, err)
	}
	return nil
}

// RemoveDir removes path and everything below it. A missing path is not an
// error.
func RemoveDir(path string) error {
	if path == "" || path == "/" {
		return fmt.Errorf("refusing to remove %q", path)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove directory %s: %w", path, err)
	}
	return nil
}
