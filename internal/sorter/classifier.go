package sorter

// Classification is the outcome of classifying one file.
type Classification struct {
	Category string
	Template string
	// Rule names the user rule that matched; empty for the category table fallback.
	Rule     string
	Fallback bool
}

// Classifier evaluates user rules in order and falls back to a category table.
// It holds no mutable state, so the same tags always classify the same way.
type Classifier struct {
	rules []Rule
	table *CategoryTable
}

// NewClassifier creates a classifier over rules. A nil table selects
// DefaultCategoryTable.
func NewClassifier(rules []Rule, table *CategoryTable) *Classifier {
	if table == nil {
		table = DefaultCategoryTable()
	}
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		normalized[i] = r.Normalize()
	}
	return &Classifier{rules: normalized, table: table}
}

// Classify returns the category and destination template for tags.
// The first matching rule wins.
func (c *Classifier) Classify(tags TagSet) Classification {
	for i, r := range c.rules {
		if r.Matches(tags) {
			return Classification{
				Category: r.category(),
				Template: r.Target,
				Rule:     r.label(i),
			}
		}
	}
	cat := c.table.Categorize(tags)
	return Classification{
		Category: cat.Name,
		Template: cat.Template,
		Fallback: true,
	}
}

// Keywords returns the content keywords the category table matches on.
func (c *Classifier) Keywords() []string {
	return c.table.Keywords()
}

// OutputDirs lists the top-level directories this classifier can place files
// in. The walker prunes them so sorted files are never revisited.
func (c *Classifier) OutputDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(template string) {
		if d := topLevelDir(template); d != "" && !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	for _, cat := range c.table.Categories {
		add(cat.Template)
	}
	for _, r := range c.rules {
		add(r.Target)
	}
	return dirs
}
