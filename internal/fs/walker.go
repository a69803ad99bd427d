package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"omnisort/internal/sorter"
)

// Walk lazily enumerates the regular files under root in lexical order.
//
// Directories listed in excluded (root-relative, slash separated) and
// directories matching an ignore pattern are pruned without being read.
// Symlinks and special files are skipped. Errors reading a directory or
// entry are yielded as per-item errors and the walk continues.
func (m *OSFilesystemManager) Walk(root string, excluded []string) (iter.Seq2[*sorter.FileRecord, error], error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", sorter.ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", sorter.ErrRootNotFound, root)
	}

	filePatterns, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	patterns := append(append(append([]string{}, defaultIgnorePatterns...), m.ignorePatterns...), filePatterns...)
	matcher := NewIgnoreMatcher(patterns)

	pruned := make(map[string]bool, len(excluded))
	for _, d := range excluded {
		d = strings.Trim(filepath.ToSlash(filepath.Clean(d)), "/")
		if d != "" && d != "." {
			pruned[d] = true
		}
	}

	return func(yield func(*sorter.FileRecord, error) bool) {
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(nil, fmt.Errorf("reading %s: %w", p, err)) {
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() && p != root {
					return filepath.SkipDir
				}
				return nil
			}
			if p == root {
				return nil
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if pruned[filepath.ToSlash(rel)] || matcher.Match(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || matcher.Match(rel) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				if !yield(nil, fmt.Errorf("stat %s: %w", p, err)) {
					return filepath.SkipAll
				}
				return nil
			}
			if !yield(sorter.NewFileRecord(root, p, info), nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}, nil
}
