package sorter

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// CategoryTableVersion is bumped whenever the built-in table changes which
// category a file lands in.
const CategoryTableVersion = 2

// Category is a named output bucket.
type Category struct {
	Name string `yaml:"name"`
	// Template is the fallback destination template for files that land
	// here without a matching user rule.
	Template string `yaml:"template"`
}

// CategoryMatcher assigns Category to files meeting all of its set conditions.
// Each list condition is satisfied by any one of its entries.
type CategoryMatcher struct {
	Category     string   `yaml:"category"`
	Type         FileType `yaml:"type,omitempty"`
	Ext          []string `yaml:"ext,omitempty"`
	PathKeywords []string `yaml:"path_keywords,omitempty"`
	// Keywords hit on the file name or on the provider's content keywords.
	Keywords []string `yaml:"keywords,omitempty"`
	HasFaces bool     `yaml:"has_faces,omitempty"`
}

// CategoryTable is the ordered, versioned keyword/extension table used when
// no user rule matches. The first matcher that holds wins; Default applies
// otherwise.
type CategoryTable struct {
	Version    int               `yaml:"version"`
	Categories []Category        `yaml:"categories"`
	Matchers   []CategoryMatcher `yaml:"matchers"`
	Default    string            `yaml:"default"`
}

var studyKeywords = []string{
	"unisa", "assignment", "ass1", "ass2", "ass3", "exam", "portfolio",
	"age", "anh", "soc", "dva", "cls",
}

var codeExts = []string{
	"py", "ps1", "psm1", "java", "cs", "cpp", "h", "js", "ts",
	"html", "css", "json", "yml", "yaml", "gradle", "kts",
}

var installerExts = []string{
	"exe", "msi", "msix", "apk", "iso", "img", "dmg", "cab", "msixbundle", "zip",
}

// DefaultCategoryTable returns the built-in table.
func DefaultCategoryTable() *CategoryTable {
	docs := keys(documentExts)
	return &CategoryTable{
		Version: CategoryTableVersion,
		Categories: []Category{
			{Name: "Studies", Template: "01_Studies/{year}/{month}"},
			{Name: "People", Template: "02_People/{face}/{year}/{month}"},
			{Name: "Photos", Template: "03_Photos/{year}/{month}/{device}"},
			{Name: "Videos", Template: "04_Videos/{year}/{month}"},
			{Name: "Projects", Template: "05_Projects/{year}/{month}"},
			{Name: "Installers", Template: "06_Installers/{year}/{month}"},
			{Name: "Documents", Template: "07_Documents/{year}/{month}"},
			{Name: "Backups", Template: "08_Backups/{year}/{month}"},
			{Name: "Archive", Template: "99_Archive/{year}/{month}"},
		},
		Matchers: []CategoryMatcher{
			{Category: "Installers", Ext: installerExts},
			{Category: "Installers", PathKeywords: []string{"/installers/"}},
			{Category: "Studies", Type: TypeImage, Keywords: studyKeywords},
			{Category: "People", Type: TypeImage, HasFaces: true},
			{Category: "Photos", Type: TypeImage},
			{Category: "Videos", Type: TypeVideo},
			{Category: "Studies", Ext: docs, Keywords: studyKeywords},
			{Category: "Projects", Ext: codeExts},
			{Category: "Projects", PathKeywords: []string{
				"/dev/", "/minecraft", "battery_pro", "uilnes", "embassy_contact_scraper", "lunospot", "lunobot",
			}},
			{Category: "Backups", PathKeywords: []string{"backup", "whatsapp", "recover", "sdcard", "ouma hardeskyf"}},
			{Category: "Documents", Ext: docs},
		},
		Default: "Archive",
	}
}

// Validate checks that every matcher and the default name a known category.
func (t *CategoryTable) Validate() error {
	if _, ok := t.category(t.Default); !ok {
		return fmt.Errorf("category table default %q is not a defined category", t.Default)
	}
	for i, m := range t.Matchers {
		if _, ok := t.category(m.Category); !ok {
			return fmt.Errorf("category matcher #%d names unknown category %q", i+1, m.Category)
		}
	}
	for _, c := range t.Categories {
		if c.Template == "" {
			return fmt.Errorf("category %q has no template", c.Name)
		}
	}
	return nil
}

// Keywords returns every content keyword the table can match on, deduplicated.
func (t *CategoryTable) Keywords() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range t.Matchers {
		for _, k := range m.Keywords {
			k = strings.ToLower(k)
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// Categorize returns the category for tags and its fallback template.
func (t *CategoryTable) Categorize(tags TagSet) Category {
	for _, m := range t.Matchers {
		if m.matches(tags) {
			if c, ok := t.category(m.Category); ok {
				return c
			}
		}
	}
	c, _ := t.category(t.Default)
	return c
}

func (t *CategoryTable) category(name string) (Category, bool) {
	for _, c := range t.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

func (m CategoryMatcher) matches(tags TagSet) bool {
	if m.Type != "" && m.Type != tags.Type {
		return false
	}
	if m.HasFaces && len(tags.Faces) == 0 {
		return false
	}
	if len(m.Ext) > 0 {
		ext := NormalizeExt(tags.Ext)
		found := false
		for _, e := range m.Ext {
			if NormalizeExt(e) == ext {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(m.PathKeywords) > 0 {
		// Leading slash lets "/dev/" match a top-level dev directory.
		path := "/" + strings.ToLower(tags.Path)
		if !containsAny(path, m.PathKeywords) {
			return false
		}
	}
	if len(m.Keywords) > 0 {
		if !nameHasKeyword(tags.Name, m.Keywords) && !anyKeywordHit(tags.Keywords, m.Keywords) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// nameHasKeyword matches keywords against the words of a file name. Short
// keywords must equal a whole word so "age" does not match "image".
func nameHasKeyword(name string, keywords []string) bool {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		for _, k := range keywords {
			k = strings.ToLower(k)
			if w == k || (len(k) >= 4 && strings.Contains(w, k)) {
				return true
			}
		}
	}
	return false
}

func anyKeywordHit(hits, wanted []string) bool {
	for _, h := range hits {
		for _, w := range wanted {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
