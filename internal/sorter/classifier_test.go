package sorter

import (
	"sort"
	"testing"
)

func TestClassifier_Classify(t *testing.T) {
	rules := []Rule{
		{Name: "alice", Faces: []string{"alice"}, Category: "Family", Target: "Family/{face}/{year}"},
		{Type: TypeImage, Camera: "Pixel 7", Target: "Phone/{year}"},
		{Name: "all images", Type: TypeImage, Target: "Images/{year}"},
	}
	c := NewClassifier(rules, nil)

	tests := []struct {
		name         string
		tags         TagSet
		wantCategory string
		wantTemplate string
		wantRule     string
		wantFallback bool
	}{
		{
			name:         "first matching rule wins",
			tags:         TagSet{Type: TypeImage, Device: "Pixel 7", Faces: []string{"alice"}},
			wantCategory: "Family",
			wantTemplate: "Family/{face}/{year}",
			wantRule:     "alice",
		},
		{
			name:         "unnamed rule gets positional label and default category",
			tags:         TagSet{Type: TypeImage, Device: "Pixel 7"},
			wantCategory: DefaultRuleCategory,
			wantTemplate: "Phone/{year}",
			wantRule:     "rule #2",
		},
		{
			name:         "camera rule matches the sanitized device tag",
			tags:         TagSet{Type: TypeImage, Device: SanitizeDevice("Pixel 7")},
			wantCategory: DefaultRuleCategory,
			wantTemplate: "Phone/{year}",
			wantRule:     "rule #2",
		},
		{
			name:         "later rule when earlier ones do not hold",
			tags:         TagSet{Type: TypeImage, Device: "Canon"},
			wantCategory: DefaultRuleCategory,
			wantTemplate: "Images/{year}",
			wantRule:     "all images",
		},
		{
			name:         "category table when no rule matches",
			tags:         tagsFor("letter.pdf"),
			wantCategory: "Documents",
			wantTemplate: "07_Documents/{year}/{month}",
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.tags)
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Template != tt.wantTemplate {
				t.Errorf("Template = %q, want %q", got.Template, tt.wantTemplate)
			}
			if got.Rule != tt.wantRule {
				t.Errorf("Rule = %q, want %q", got.Rule, tt.wantRule)
			}
			if got.Fallback != tt.wantFallback {
				t.Errorf("Fallback = %v, want %v", got.Fallback, tt.wantFallback)
			}
		})
	}

	t.Run("same tags classify the same way", func(t *testing.T) {
		tags := TagSet{Type: TypeImage, Device: "Canon"}
		first := c.Classify(tags)
		for i := 0; i < 10; i++ {
			if got := c.Classify(tags); got != first {
				t.Fatalf("Classify() = %+v, want %+v", got, first)
			}
		}
	})
}

func TestClassifier_OutputDirs(t *testing.T) {
	table := &CategoryTable{
		Categories: []Category{
			{Name: "Docs", Template: "Docs/{year}"},
			{Name: "Other", Template: "{ext}/misc"},
		},
		Default: "Other",
	}
	rules := []Rule{
		{Target: "Papers/{year}"},
		{Target: "Docs/{month}"},
	}

	got := NewClassifier(rules, table).OutputDirs()
	sort.Strings(got)
	want := []string{"Docs", "Papers"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("OutputDirs() = %v, want %v", got, want)
	}
}
