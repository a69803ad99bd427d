package journal

import (
	"sync"

	"omnisort/internal/sorter"
)

// MemoryJournal keeps entries in memory. Used by tests and the "memory" journal type.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []sorter.RollbackEntry

	// FailWith, when set, is returned by Record instead of appending.
	FailWith error
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Record(e sorter.RollbackEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.FailWith != nil {
		return j.FailWith
	}
	j.entries = append(j.entries, e)
	return nil
}

func (j *MemoryJournal) Load() ([]sorter.RollbackEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]sorter.RollbackEntry{}, j.entries...), nil
}

var _ sorter.Journal = (*MemoryJournal)(nil)
