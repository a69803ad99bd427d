package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"omnisort/internal/sorter"
)

// maxLineSize bounds one journal line; paths are far shorter in practice.
const maxLineSize = 1 << 20

// FileJournal is a JSON Lines rollback journal. Each Record appends one line
// and syncs it to disk before returning. The file is never rewritten.
type FileJournal struct {
	path string
	mu   sync.Mutex
}

// NewFileJournal creates a journal stored at path. The file is created on
// the first Record.
func NewFileJournal(path string) *FileJournal {
	return &FileJournal{path: path}
}

// Path returns the journal file location.
func (j *FileJournal) Path() string {
	return j.path
}

// Record appends e as one JSON line and fsyncs the file.
func (j *FileJournal) Record(e sorter.RollbackEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding journal entry: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return fmt.Errorf("creating journal directory: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("appending journal entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing journal: %w", err)
	}
	return nil
}

// Load reads every entry in append order. Blank lines are ignored. A line
// that is not a valid entry stops the read; the entries before it are
// returned together with an error wrapping sorter.ErrJournalCorrupt.
func (j *FileJournal) Load() ([]sorter.RollbackEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []sorter.RollbackEntry{}, nil
		}
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	entries := []sorter.RollbackEntry{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		e, err := decodeEntry(line)
		if err != nil {
			return entries, fmt.Errorf("%w: %s line %d: %v", sorter.ErrJournalCorrupt, j.path, lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("%w: %s: %v", sorter.ErrJournalCorrupt, j.path, err)
	}
	return entries, nil
}

func decodeEntry(line []byte) (sorter.RollbackEntry, error) {
	var e sorter.RollbackEntry
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		return e, err
	}
	if e.Before == "" || e.After == "" {
		return e, errors.New("entry missing before or after path")
	}
	return e, nil
}

// Compile-time check that FileJournal implements sorter.Journal interface
var _ sorter.Journal = (*FileJournal)(nil)
