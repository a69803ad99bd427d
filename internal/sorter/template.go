package sorter

import (
	"path/filepath"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

var separatorReplacer = strings.NewReplacer("/", "_", `\`, "_")

// ExpandTemplate substitutes every {tag} placeholder with its value from tags.
// Placeholders without a value are left as literal text.
func ExpandTemplate(template string, tags TagSet) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := tags.Lookup(name)
		if !ok {
			return m
		}
		return separatorReplacer.Replace(v)
	})
}

// Resolve expands template and appends filename as the final path segment.
// The result is relative to the sort root and uses OS separators.
func Resolve(template string, tags TagSet, filename string) string {
	dir := filepath.FromSlash(ExpandTemplate(template, tags))
	return filepath.Join(dir, filename)
}

// topLevelDir returns the first segment of a template when it contains no
// placeholder, or "" otherwise.
func topLevelDir(template string) string {
	template = strings.TrimLeft(filepath.ToSlash(template), "/")
	first, _, _ := strings.Cut(template, "/")
	if first == "" || first == "." || first == ".." || strings.ContainsAny(first, "{}") {
		return ""
	}
	return first
}
