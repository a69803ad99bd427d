package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"omnisort/internal/sorter"
)

// maxCandidates bounds the name__N search in a single destination directory.
const maxCandidates = 10000

// CandidateName returns the n-th name tried for name: the name itself for
// n == 0, otherwise stem__n plus the extension. A leading-dot name with no
// further dot is treated as all stem.
func CandidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	stem, ext := splitName(name)
	return fmt.Sprintf("%s__%d%s", stem, n, ext)
}

func splitName(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// Move moves source into destDir under the first free candidate name.
// A candidate is claimed with an exclusive primitive, so an existing file is
// never replaced even if it appears between the check and the move. commit
// runs once the name is claimed; if it fails the claim is released and the
// source stays where it is.
func (m *OSFilesystemManager) Move(source, destDir string, commit sorter.CommitFunc) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", &sorter.MoveError{Source: source, Dest: destDir, Err: fmt.Errorf("creating destination: %w", err)}
	}

	name := filepath.Base(source)
	for n := 0; n < maxCandidates; n++ {
		candidate := filepath.Join(destDir, CandidateName(name, n))
		if candidate == source {
			continue
		}
		err := transfer(source, candidate, commit)
		if err == nil {
			return candidate, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return "", &sorter.MoveError{Source: source, Dest: candidate, Err: err}
	}
	return "", &sorter.MoveError{Source: source, Dest: destDir, Err: fmt.Errorf("no free name after %d attempts", maxCandidates)}
}

// Plan returns the name Move would pick for source in destDir given the
// current disk state, skipping names for which reserved returns true.
// It does not create or modify anything.
func (m *OSFilesystemManager) Plan(source, destDir string, reserved func(string) bool) (string, error) {
	name := filepath.Base(source)
	for n := 0; n < maxCandidates; n++ {
		candidate := filepath.Join(destDir, CandidateName(name, n))
		if candidate == source || (reserved != nil && reserved(candidate)) {
			continue
		}
		exists, err := m.Exists(candidate)
		if err != nil {
			return "", &sorter.MoveError{Source: source, Dest: candidate, Err: err}
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", &sorter.MoveError{Source: source, Dest: destDir, Err: fmt.Errorf("no free name after %d attempts", maxCandidates)}
}

// Restore moves current back to original. It never suffixes and never
// overwrites: an occupied original yields an error wrapping fs.ErrExist.
func (m *OSFilesystemManager) Restore(current, original string) error {
	if err := os.MkdirAll(filepath.Dir(original), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(original), err)
	}
	if err := transfer(current, original, nil); err != nil {
		return fmt.Errorf("restoring %s to %s: %w", current, original, err)
	}
	return nil
}

// transfer moves src to dst without replacing an existing dst. It returns
// an error wrapping fs.ErrExist when dst is already taken.
//
// dst is claimed with a hard link where the filesystem allows it. Otherwise
// an empty placeholder is created exclusively and then replaced by a rename,
// or filled by a copy when src is on another device.
func transfer(src, dst string, commit sorter.CommitFunc) error {
	err := os.Link(src, dst)
	switch {
	case err == nil:
		if err := runCommit(commit, dst); err != nil {
			os.Remove(dst)
			return err
		}
		if err := os.Remove(src); err != nil {
			os.Remove(dst)
			return fmt.Errorf("removing source: %w", err)
		}
		return nil
	case errors.Is(err, fs.ErrExist):
		return err
	case !linkUnsupported(err):
		return fmt.Errorf("linking: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	f.Close()

	if err := runCommit(commit, dst); err != nil {
		os.Remove(dst)
		return err
	}

	if err := os.Rename(src, dst); err != nil {
		if !crossDevice(err) {
			os.Remove(dst)
			return fmt.Errorf("renaming: %w", err)
		}
		if err := copyInto(src, dst); err != nil {
			os.Remove(dst)
			return fmt.Errorf("copying across devices: %w", err)
		}
		if err := os.Remove(src); err != nil {
			os.Remove(dst)
			return fmt.Errorf("removing source: %w", err)
		}
	}
	return nil
}

func runCommit(commit sorter.CommitFunc, dst string) error {
	if commit == nil {
		return nil
	}
	if err := commit(dst); err != nil {
		return fmt.Errorf("committing move: %w", err)
	}
	return nil
}

// copyInto copies src over the placeholder dst, keeping src's mode and
// modification time.
func copyInto(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
