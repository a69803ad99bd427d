package database

import (
	"database/sql"
	"errors"
	"fmt"

	"omnisort/internal/database/migrations"
	"omnisort/internal/sorter"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db    *sql.DB
	path  string
	clock sorter.Clock
}

// NewSQLiteDatabase creates a new SQLite database connection and migrates it
// to the latest schema. path can be a file path or ":memory:" for an
// in-memory database. A nil clock selects sorter.RealClock.
func NewSQLiteDatabase(path string, clock sorter.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return NewSQLiteDatabaseFromDB(db, path, clock), nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, path string, clock sorter.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = sorter.RealClock{}
	}
	return &SQLiteDatabase{db: db, path: path, clock: clock}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Run tracking

func (s *SQLiteDatabase) CreateRun(runID, operation, parameters string) (*sorter.Run, error) {
	startedAt := s.clock.Now()
	res, err := s.db.Exec(
		`INSERT INTO runs (run_id, operation, parameters, started_at, status) VALUES (?, ?, ?, ?, 'running')`,
		runID, operation, parameters, startedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading run id: %w", err)
	}
	return &sorter.Run{
		ID:         id,
		RunID:      runID,
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  startedAt,
		Status:     "running",
	}, nil
}

func (s *SQLiteDatabase) FinishRun(id int64, status string) error {
	res, err := s.db.Exec(`UPDATE runs SET finished_at = ?, status = ? WHERE id = ?`, s.clock.Now(), status, id)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing run: no run with id %d", id)
	}
	return nil
}

func (s *SQLiteDatabase) ListRuns(limit int) ([]*sorter.Run, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, operation, parameters, started_at, finished_at, status
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*sorter.Run
	for rows.Next() {
		var r sorter.Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.RunID, &r.Operation, &r.Parameters, &r.StartedAt, &finished, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteDatabase) FindRunByRunID(runID string) (*sorter.Run, error) {
	var r sorter.Run
	var finished sql.NullTime
	err := s.db.QueryRow(
		`SELECT id, run_id, operation, parameters, started_at, finished_at, status
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&r.ID, &r.RunID, &r.Operation, &r.Parameters, &r.StartedAt, &finished, &r.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding run: %w", err)
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

// Move records

func (s *SQLiteDatabase) RecordMove(rec *sorter.MoveRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.clock.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO moves (run_id, ts, source, destination, category, hash, note) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Timestamp, rec.Source, rec.Destination, rec.Category, nullString(rec.Hash), nullString(rec.Note),
	)
	if err != nil {
		return fmt.Errorf("recording move: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

const moveColumns = `id, run_id, ts, source, destination, category, hash, note`

func (s *SQLiteDatabase) ListMoves(runID string, limit int) ([]*sorter.MoveRecord, error) {
	var rows *sql.Rows
	var err error
	if runID == "" {
		rows, err = s.db.Query(`SELECT `+moveColumns+` FROM moves ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(`SELECT `+moveColumns+` FROM moves WHERE run_id = ? ORDER BY id DESC LIMIT ?`, runID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("listing moves: %w", err)
	}
	defer rows.Close()

	var moves []*sorter.MoveRecord
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing moves: %w", err)
	}
	return moves, nil
}

func (s *SQLiteDatabase) FindMoveByDestination(destination string) (*sorter.MoveRecord, error) {
	row := s.db.QueryRow(`SELECT `+moveColumns+` FROM moves WHERE destination = ? ORDER BY id DESC LIMIT 1`, destination)
	m, err := scanMove(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMove(row scanner) (*sorter.MoveRecord, error) {
	var m sorter.MoveRecord
	var hash, note sql.NullString
	if err := row.Scan(&m.ID, &m.RunID, &m.Timestamp, &m.Source, &m.Destination, &m.Category, &hash, &note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning move: %w", err)
	}
	m.Hash = hash.String
	m.Note = note.String
	return &m, nil
}

// Error records

func (s *SQLiteDatabase) RecordError(rec *sorter.ErrorRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.clock.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO errors (run_id, ts, context, message) VALUES (?, ?, ?, ?)`,
		rec.RunID, rec.Timestamp, rec.Context, rec.Message,
	)
	if err != nil {
		return fmt.Errorf("recording error: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

func (s *SQLiteDatabase) ListErrors(runID string, limit int) ([]*sorter.ErrorRecord, error) {
	const cols = `id, run_id, ts, context, message`
	var rows *sql.Rows
	var err error
	if runID == "" {
		rows, err = s.db.Query(`SELECT `+cols+` FROM errors ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(`SELECT `+cols+` FROM errors WHERE run_id = ? ORDER BY id DESC LIMIT ?`, runID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("listing errors: %w", err)
	}
	defer rows.Close()

	var out []*sorter.ErrorRecord
	for rows.Next() {
		var e sorter.ErrorRecord
		if err := rows.Scan(&e.ID, &e.RunID, &e.Timestamp, &e.Context, &e.Message); err != nil {
			return nil, fmt.Errorf("scanning error record: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing errors: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements sorter.Database interface
var _ sorter.Database = (*SQLiteDatabase)(nil)
