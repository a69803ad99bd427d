package sorter

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound is returned when the tree to sort does not exist or is not a directory.
	ErrRootNotFound = errors.New("root not found")

	// ErrJournalCorrupt is returned when the rollback journal exists but cannot be parsed.
	ErrJournalCorrupt = errors.New("rollback journal corrupt")
)

// MoveError reports that a single file could not be moved. The file is left in place.
type MoveError struct {
	Source string
	Dest   string
	Err    error
}

func (e *MoveError) Error() string {
	if e.Dest == "" {
		return fmt.Sprintf("move failed for %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("move failed for %s -> %s: %v", e.Source, e.Dest, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }
