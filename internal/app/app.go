package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"omnisort/internal/config"
	"omnisort/internal/database"
	"omnisort/internal/fs"
	"omnisort/internal/journal"
	"omnisort/internal/metadata"
	"omnisort/internal/sorter"
)

// Options carries per-invocation settings that override the config file.
type Options struct {
	Workers int       // 0 keeps sorter.workers from the config
	Verbose bool      // echo debug logging to Console
	Console io.Writer // defaults to os.Stderr
}

// SorterApp is the application layer between the CLI and sorter.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the history DB lifecycle on Close.
type SorterApp struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	service *sorter.Service
	op      *Operation
	logFile *os.File
}

// NewSorterApp creates a fully wired SorterApp from the given config.
// operation identifies the CLI command being run (e.g. "Sort", "Rollback").
// The caller must call Close when done.
func NewSorterApp(cfg *config.Config, operation string, opts Options) (*SorterApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	timeout, err := cfg.Sorter.Timeout()
	if err != nil {
		return nil, err
	}

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	classifier := sorter.NewClassifier(rules.Rules, rules.Categories)

	provider := metadata.NewProvider(metadata.Options{
		Keywords:        append(classifier.Keywords(), cfg.Sorter.Keywords...),
		PerceptualDedup: cfg.Sorter.PerceptualDedup,
	})

	j, err := journal.NewJournalFromConfig(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	clock := sorter.RealClock{}
	db, err := database.NewDatabaseFromConfig(cfg.Database, clock)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	idgen := sorter.UUIDGenerator{}
	runID := idgen.New()

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	logger, logFile, err := newLogger(cfg.LogDir, runID, console, opts.Verbose)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	workers := cfg.Sorter.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)
	svc := sorter.NewService(fsmgr, provider, classifier, j, db, &slogAdapter{l: logger}, clock, idgen, sorter.Options{
		Workers:         workers,
		ProviderTimeout: timeout,
		DuplicatesDir:   cfg.DuplicatesDir,
		Exclude:         cfg.Filesystem.Exclude,
	})

	return &SorterApp{
		cfg:     cfg,
		db:      db,
		service: svc,
		op:      NewOperation(runID, operation, ""),
		logFile: logFile,
	}, nil
}

// RunID returns the identifier stamped on this invocation's log, journal and history entries.
func (a *SorterApp) RunID() string {
	return a.op.RunID
}

// persistOperation saves the run to the history database, giving it an auto-increment ID.
// This should only be called for commands that move files.
func (a *SorterApp) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	a.op.Parameters = parameters
	run, err := a.db.CreateRun(a.op.RunID, a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	a.op.ID = run.ID
	return nil
}

// Sort resolves rawRoot and sorts the tree beneath it. Simulated runs leave
// no trace in the journal or the history database.
func (a *SorterApp) Sort(ctx context.Context, rawRoot string, simulate bool, reporter sorter.Reporter) (*sorter.SortSummary, error) {
	root, err := filepath.Abs(rawRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if !simulate {
		if err := a.persistOperation(root); err != nil {
			return nil, err
		}
	}

	sum, err := a.service.Sort(ctx, sorter.SortRequest{
		Root:     root,
		Simulate: simulate,
		RunID:    a.op.RunID,
		Reporter: reporter,
	})
	switch {
	case err != nil:
		a.op.Fail()
	case sum.Failed > 0:
		a.op.Degrade()
	}
	return sum, err
}

// Rollback replays the journal. Only an applying replay is recorded as a run.
func (a *SorterApp) Rollback(apply, lastRun bool, reporter sorter.Reporter) (*sorter.RollbackSummary, error) {
	if apply {
		params := "all"
		if lastRun {
			params = "last"
		}
		if err := a.persistOperation(params); err != nil {
			return nil, err
		}
	}

	sum, err := a.service.Rollback(sorter.RollbackRequest{
		Apply:    apply,
		LastRun:  lastRun,
		RunID:    a.op.RunID,
		Reporter: reporter,
	})
	switch {
	case err != nil:
		a.op.Fail()
	case sum.Failed > 0:
		a.op.Degrade()
	}
	return sum, err
}

// GetHistory returns the most recent runs.
func (a *SorterApp) GetHistory(limit int) ([]*sorter.Run, error) {
	return a.service.GetHistory(limit)
}

// GetMoves returns recorded moves, optionally limited to one run.
func (a *SorterApp) GetMoves(runID string, limit int) ([]*sorter.MoveRecord, error) {
	return a.service.GetMoves(strings.TrimSpace(runID), limit)
}

// GetErrors returns recorded per-item failures, optionally limited to one run.
func (a *SorterApp) GetErrors(runID string, limit int) ([]*sorter.ErrorRecord, error) {
	return a.service.GetErrors(strings.TrimSpace(runID), limit)
}

// TraceFile resolves rawPath and returns the move that placed the file there.
// The path may no longer exist on disk; resolution uses filepath.Abs only.
func (a *SorterApp) TraceFile(rawPath string) (*sorter.FileTrace, error) {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return a.service.TraceFile(p)
}

// ExportHistory writes a snapshot of the history database to rawPath.
func (a *SorterApp) ExportHistory(rawPath string) error {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(p); err == nil {
		return fmt.Errorf("export target already exists: %s", p)
	}
	return a.service.ExportHistory(p)
}

// Close finalizes the run record and closes all resources.
// For persisted operations the run is marked finished with its final status first.
func (a *SorterApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishRun(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing run: %w", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
