package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"omnisort/internal/sorter"
)

// RuleSet is the parsed rules file: ordered user rules and an optional
// replacement for the built-in category table.
type RuleSet struct {
	Version    int                   `yaml:"version"`
	Rules      []sorter.Rule         `yaml:"rules"`
	Categories *sorter.CategoryTable `yaml:"categories,omitempty"`
}

// LoadRules reads the rules file at path. YAML and JSON are both accepted.
// The document is either a list of rules or a mapping with version, rules
// and categories keys. A missing file yields an empty RuleSet.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &RuleSet{}, nil
		}
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	rs, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("loading rules from %s: %w", path, err)
	}
	return rs, nil
}

// ParseRules decodes and validates a rules document.
func ParseRules(data []byte) (*RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	rs := &RuleSet{}
	if len(doc.Content) > 0 {
		top := doc.Content[0]
		switch top.Kind {
		case yaml.SequenceNode:
			if err := top.Decode(&rs.Rules); err != nil {
				return nil, fmt.Errorf("decoding rule list: %w", err)
			}
		case yaml.MappingNode:
			if err := top.Decode(rs); err != nil {
				return nil, fmt.Errorf("decoding rules document: %w", err)
			}
		default:
			return nil, fmt.Errorf("rules document must be a list or a mapping (line %d)", top.Line)
		}
	}

	for i, r := range rs.Rules {
		if err := r.Validate(i); err != nil {
			return nil, err
		}
	}
	if rs.Categories != nil {
		if err := rs.Categories.Validate(); err != nil {
			return nil, err
		}
	}
	return rs, nil
}
