package sorter

import (
	"runtime"
	"time"
)

// DefaultDuplicatesDir is the root-relative directory duplicates are moved into.
const DefaultDuplicatesDir = "99_Archive/Duplicates"

// DefaultProviderTimeout bounds a single metadata extraction.
const DefaultProviderTimeout = 10 * time.Second

// Options tunes the sort pipeline. Zero values select the defaults.
type Options struct {
	// Workers bounds concurrent metadata extraction. Defaults to runtime.NumCPU().
	Workers int

	// ProviderTimeout bounds each Extract call; on expiry the file keeps its base tags.
	ProviderTimeout time.Duration

	// DuplicatesDir is the root-relative directory duplicates are moved into.
	DuplicatesDir string

	// Exclude lists extra root-relative directories the walker must not enter.
	Exclude []string
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.ProviderTimeout <= 0 {
		o.ProviderTimeout = DefaultProviderTimeout
	}
	if o.DuplicatesDir == "" {
		o.DuplicatesDir = DefaultDuplicatesDir
	}
	return o
}

// Service is the orchestration layer that runs the classification,
// deduplication, move and rollback pipeline for the CLI.
type Service struct {
	fsmgr      FilesystemManager
	provider   MetadataProvider
	classifier *Classifier
	journal    Journal
	database   Database
	logger     Logger
	clock      Clock
	idgen      IDGenerator
	opts       Options
}

// NewService creates a Service with the provided dependencies.
func NewService(fsmgr FilesystemManager, provider MetadataProvider, classifier *Classifier, journal Journal, database Database, logger Logger, clock Clock, idgen IDGenerator, opts Options) *Service {
	return &Service{
		fsmgr:      fsmgr,
		provider:   provider,
		classifier: classifier,
		journal:    journal,
		database:   database,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
		opts:       opts.withDefaults(),
	}
}

// NewRunID returns a fresh identifier for stamping journal, history and log entries.
func (s *Service) NewRunID() string {
	return s.idgen.New()
}

// recordError writes an audit row for a per-item failure. Audit write
// failures are logged and otherwise ignored.
func (s *Service) recordError(runID, context string, cause error) {
	if s.database == nil || runID == "" {
		return
	}
	rec := &ErrorRecord{
		RunID:     runID,
		Timestamp: s.clock.Now(),
		Context:   context,
		Message:   cause.Error(),
	}
	if err := s.database.RecordError(rec); err != nil {
		s.logger.Warn("recording error failed", "context", context, "error", err)
	}
}
