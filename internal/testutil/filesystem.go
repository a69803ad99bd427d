package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	omnifs "omnisort/internal/fs"
	"omnisort/internal/sorter"
)

// TreeModTime is the modification time WriteTree stamps on every file.
var TreeModTime = time.Date(2023, 5, 10, 12, 0, 0, 0, time.Local)

// WriteTree creates files (slash-separated relative path → content) under root,
// all with modification time TreeModTime.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", rel, err)
		}
		if err := os.Chtimes(p, TreeModTime, TreeModTime); err != nil {
			t.Fatalf("setting mtime on %s: %v", rel, err)
		}
	}
}

// Snapshot returns every regular file under root as slash-separated
// relative path → content.
func Snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("snapshotting %s: %v", root, err)
	}
	return out
}

// FaultyFilesystem wraps the real filesystem manager and fails Move or
// Restore for chosen source paths.
type FaultyFilesystem struct {
	*omnifs.OSFilesystemManager

	mu          sync.Mutex
	failMove    map[string]error
	failRestore map[string]error
}

// NewFaultyFilesystem creates a FaultyFilesystem with no faults configured.
func NewFaultyFilesystem() *FaultyFilesystem {
	return &FaultyFilesystem{
		OSFilesystemManager: omnifs.NewOSFilesystemManager(nil),
		failMove:            make(map[string]error),
		failRestore:         make(map[string]error),
	}
}

// FailMove makes every Move of source return err.
func (f *FaultyFilesystem) FailMove(source string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failMove[source] = err
}

// FailRestore makes every Restore of current return err.
func (f *FaultyFilesystem) FailRestore(current string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRestore[current] = err
}

func (f *FaultyFilesystem) Move(source, destDir string, commit sorter.CommitFunc) (string, error) {
	f.mu.Lock()
	err := f.failMove[source]
	f.mu.Unlock()
	if err != nil {
		return "", &sorter.MoveError{Source: source, Dest: destDir, Err: err}
	}
	return f.OSFilesystemManager.Move(source, destDir, commit)
}

func (f *FaultyFilesystem) Restore(current, original string) error {
	f.mu.Lock()
	err := f.failRestore[current]
	f.mu.Unlock()
	if err != nil {
		return &sorter.MoveError{Source: current, Dest: original, Err: err}
	}
	return f.OSFilesystemManager.Restore(current, original)
}

// ErrInjected is a ready-made fault for FailMove and FailRestore.
var ErrInjected = errors.New("injected failure")

var _ sorter.FilesystemManager = (*FaultyFilesystem)(nil)
