package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"omnisort/internal/sorter"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignorePatterns []string
}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
// ignorePatterns are applied to every walk in addition to the root's ignore file.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignorePatterns: ignorePatterns}
}

// Exists reports whether anything, including a dangling symlink, occupies path.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Compile-time check that OSFilesystemManager implements sorter.FilesystemManager interface
var _ sorter.FilesystemManager = (*OSFilesystemManager)(nil)
