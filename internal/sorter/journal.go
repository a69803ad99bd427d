package sorter

import "time"

// RollbackEntry records one move so it can be reversed.
type RollbackEntry struct {
	Before    string    `json:"before"`
	After     string    `json:"after"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run,omitempty"`
}

// Journal is the append-only store of rollback entries.
type Journal interface {
	// Record appends e and makes it durable before returning.
	Record(e RollbackEntry) error

	// Load returns every entry in append order. A journal that does not
	// exist yet yields an empty slice and no error. When the journal is
	// malformed the error wraps ErrJournalCorrupt and the entries that
	// could be read are still returned.
	Load() ([]RollbackEntry, error)
}
