package sorter

import "fmt"

// DefaultRuleCategory is assigned to a matching rule that names no category.
const DefaultRuleCategory = "Custom"

// Rule is one ordered condition/template pair. Every condition that is set
// must hold for the rule to match; a rule with no conditions matches everything.
type Rule struct {
	Name     string   `yaml:"name,omitempty"`
	Type     FileType `yaml:"type,omitempty"`
	Ext      []string `yaml:"ext,omitempty"`
	Faces    []string `yaml:"faces,omitempty"`
	Camera   string   `yaml:"camera,omitempty"`
	Category string   `yaml:"category,omitempty"`
	Target   string   `yaml:"target"`
}

// Normalize lowercases extension conditions and strips their dots, and
// writes the camera condition in the same form as the device tag.
func (r Rule) Normalize() Rule {
	r.Camera = SanitizeDevice(r.Camera)
	if len(r.Ext) > 0 {
		exts := make([]string, len(r.Ext))
		for i, e := range r.Ext {
			exts[i] = NormalizeExt(e)
		}
		r.Ext = exts
	}
	return r
}

// Validate checks that the rule at position index can produce a destination.
func (r Rule) Validate(index int) error {
	if r.Target == "" {
		return fmt.Errorf("%s has no target", r.label(index))
	}
	return nil
}

// Matches reports whether every condition of r holds for tags.
func (r Rule) Matches(tags TagSet) bool {
	if r.Type != "" && r.Type != tags.Type {
		return false
	}
	if len(r.Ext) > 0 && !containsString(r.Ext, NormalizeExt(tags.Ext)) {
		return false
	}
	if len(r.Faces) > 0 {
		found := false
		for _, f := range r.Faces {
			if tags.HasFace(f) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.Camera != "" && SanitizeDevice(r.Camera) != SanitizeDevice(tags.Device) {
		return false
	}
	return true
}

func (r Rule) category() string {
	if r.Category != "" {
		return r.Category
	}
	return DefaultRuleCategory
}

func (r Rule) label(index int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("rule #%d", index+1)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
