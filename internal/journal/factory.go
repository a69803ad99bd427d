package journal

import (
	"fmt"

	"omnisort/internal/config"
	"omnisort/internal/sorter"
)

// NewJournalFromConfig creates a Journal implementation based on the journal config type.
func NewJournalFromConfig(cfg config.JournalConfig) (sorter.Journal, error) {
	switch cfg.Type {
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for file journal")
		}
		return NewFileJournal(cfg.Path), nil
	case "memory":
		return NewMemoryJournal(), nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
