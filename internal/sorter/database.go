package sorter

import "time"

// Run is one persisted CLI operation.
type Run struct {
	ID         int64
	RunID      string
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
}

// MoveRecord is the audit fact for one completed move.
// Hash and Note are empty when not applicable.
type MoveRecord struct {
	ID          int64
	RunID       string
	Timestamp   time.Time
	Source      string
	Destination string
	Category    string
	Hash        string
	Note        string
}

// ErrorRecord is the structured audit fact for one per-item failure.
type ErrorRecord struct {
	ID        int64
	RunID     string
	Timestamp time.Time
	Context   string
	Message   string
}

// Database stores the move/audit history. It is write-mostly: the sort
// pipeline appends to it and never reads it back.
type Database interface {
	// CreateRun persists a new run in the "running" state.
	CreateRun(runID, operation, parameters string) (*Run, error)

	// FinishRun stamps the run's finish time and final status.
	FinishRun(id int64, status string) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// FindRunByRunID returns the run with the given identifier, or nil if none exists.
	FindRunByRunID(runID string) (*Run, error)

	// RecordMove appends a move record.
	RecordMove(rec *MoveRecord) error

	// ListMoves returns move records, newest first. An empty runID lists all runs.
	ListMoves(runID string, limit int) ([]*MoveRecord, error)

	// FindMoveByDestination returns the latest move that produced destination, or nil.
	FindMoveByDestination(destination string) (*MoveRecord, error)

	// RecordError appends an error record.
	RecordError(rec *ErrorRecord) error

	// ListErrors returns error records, newest first. An empty runID lists all runs.
	ListErrors(runID string, limit int) ([]*ErrorRecord, error)

	// BackupTo writes a consistent copy of the database to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
