package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-tree ignore file read from the sort root.
const IgnoreFileName = ".omnisortignore"

// defaultIgnorePatterns are never sorted: the ignore file itself and OS litter.
var defaultIgnorePatterns = []string{IgnoreFileName, ".DS_Store", "Thumbs.db"}

// IgnoreMatcher decides which walked entries stay where they are. Patterns
// come from the [filesystem] ignore list and the root's .omnisortignore.
// A pattern without '/' matches any file or directory with that base name;
// one with '/' matches the slash-separated path relative to the sort root,
// and an ignored directory is pruned with everything under it.
type IgnoreMatcher struct {
	names []string
	paths []string
}

// NewIgnoreMatcher builds a matcher from raw pattern lines, skipping blanks
// and '#' comments. Malformed patterns are dropped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if _, err := path.Match(raw, ""); err != nil {
			continue
		}
		if strings.Contains(raw, "/") {
			m.paths = append(m.paths, strings.TrimPrefix(raw, "/"))
		} else {
			m.names = append(m.names, raw)
		}
	}
	return m
}

// Match reports whether relativePath, relative to the sort root, is left unsorted.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	rel := filepath.ToSlash(relativePath)
	name := path.Base(rel)
	for _, p := range m.names {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	for _, p := range m.paths {
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile returns the raw lines of an ignore file, or nil when it
// does not exist.
func ParseIgnoreFile(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
