package sorter

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DuplicateNote is the history note written for files moved to the duplicates bucket.
const DuplicateNote = "duplicate"

// SortRequest describes one sort run.
type SortRequest struct {
	Root string

	// Simulate performs every decision but moves nothing and writes no
	// journal or history entries.
	Simulate bool

	// RunID stamps journal, history and error records. Required unless simulating.
	RunID string

	Reporter Reporter
}

// SortSummary counts what a sort run did.
type SortSummary struct {
	Scanned    int
	Moved      int
	Duplicates int
	Skipped    int
	Failed     int
	Simulated  bool
}

// extraction carries one walked file through the metadata workers.
// done is closed once tags and err are set.
type extraction struct {
	rec     *FileRecord
	walkErr error
	tags    TagSet
	err     error
	done    chan struct{}
}

// sortRun holds the state owned by the decision loop of a single run.
type sortRun struct {
	req      SortRequest
	root     string
	dedup    *DuplicateDetector
	reserved map[string]bool
	produced map[string]bool
	summary  *SortSummary
}

// Sort walks root, classifies every file and moves it to its destination.
//
// Metadata extraction runs on a bounded worker pool; decisions, moves and
// journal appends happen one file at a time in walk order, so the first file
// seen with a given content hash is always the one kept in place.
// Per-item failures are logged and counted in the summary. The returned
// error is non-nil only when the run could not start or had to stop.
func (s *Service) Sort(ctx context.Context, req SortRequest) (*SortSummary, error) {
	if req.Reporter == nil {
		req.Reporter = NopReporter{}
	}
	if !req.Simulate && req.RunID == "" {
		return nil, fmt.Errorf("sort run requires a run id")
	}

	root, err := filepath.Abs(req.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	root = filepath.Clean(root)

	seq, err := s.fsmgr.Walk(root, s.excludedDirs())
	if err != nil {
		return nil, err
	}

	run := &sortRun{
		req:      req,
		root:     root,
		dedup:    NewDuplicateDetector(),
		reserved: make(map[string]bool),
		produced: make(map[string]bool),
		summary:  &SortSummary{Simulated: req.Simulate},
	}

	s.logger.Info("sort started", "root", root, "simulate", req.Simulate, "workers", s.opts.Workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make(chan *extraction, s.opts.Workers*2)
	go s.extractAll(ctx, seq, pending)

	var fatal error
	for item := range pending {
		if fatal != nil {
			continue
		}
		<-item.done
		if err := ctx.Err(); err != nil {
			fatal = fmt.Errorf("sort interrupted: %w", err)
			cancel()
			continue
		}
		if err := s.decide(run, item); err != nil {
			fatal = err
			cancel()
		}
	}

	if fatal == nil && ctx.Err() != nil {
		fatal = fmt.Errorf("sort interrupted: %w", ctx.Err())
	}

	sum := run.summary
	if fatal != nil {
		s.logger.Error("sort aborted", "error", fatal, "moved", sum.Moved, "failed", sum.Failed)
		return sum, fatal
	}
	s.logger.Info("sort complete",
		"scanned", sum.Scanned, "moved", sum.Moved, "duplicates", sum.Duplicates,
		"skipped", sum.Skipped, "failed", sum.Failed, "simulate", req.Simulate)
	return sum, nil
}

// extractAll feeds walked files to the metadata workers and queues them on
// out in walk order. It closes out once the walk ends or ctx is cancelled.
func (s *Service) extractAll(ctx context.Context, seq iter.Seq2[*FileRecord, error], out chan<- *extraction) {
	defer close(out)

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	defer g.Wait()

	for rec, walkErr := range seq {
		item := &extraction{rec: rec, walkErr: walkErr, done: make(chan struct{})}
		select {
		case out <- item:
		case <-ctx.Done():
			return
		}
		if walkErr != nil || rec == nil {
			close(item.done)
			continue
		}
		g.Go(func() error {
			defer close(item.done)
			item.tags, item.err = s.extract(ctx, item.rec)
			return nil
		})
	}
}

// extract calls the provider under the configured timeout. A provider that
// overruns or panics leaves the file with no extracted tags.
func (s *Service) extract(ctx context.Context, rec *FileRecord) (TagSet, error) {
	if s.provider == nil {
		return TagSet{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
	defer cancel()

	type result struct {
		tags TagSet
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("metadata provider panicked: %v", r)}
			}
		}()
		tags, err := s.provider.Extract(ctx, rec)
		ch <- result{tags: tags, err: err}
	}()

	select {
	case r := <-ch:
		return r.tags, r.err
	case <-ctx.Done():
		return TagSet{}, fmt.Errorf("extracting metadata: %w", ctx.Err())
	}
}

// decide handles one file on the decision loop. Only errors that must stop
// the run are returned; everything else is counted as a per-item outcome.
func (s *Service) decide(run *sortRun, item *extraction) error {
	sum := run.summary
	rep := run.req.Reporter

	if item.walkErr != nil {
		sum.Failed++
		s.logger.Error("walk error", "error", item.walkErr)
		s.recordError(run.req.RunID, "walk", item.walkErr)
		rep.Report(Outcome{Kind: OutcomeFailed, Err: item.walkErr})
		return nil
	}

	rec := item.rec
	if run.produced[rec.Path] {
		return nil
	}
	sum.Scanned++

	tags := BaseTags(rec).Merge(item.tags)
	if item.err != nil {
		s.logger.Warn("metadata degraded", "path", rec.Path, "error", item.err)
	}
	if tags.Type == TypeImage && tags.Device == "" {
		tags.Device = UnknownDevice
	}

	var destDir, category, note string
	duplicate := false
	if original, dup := run.dedup.Check(rec.Path, tags.Hash); dup {
		duplicate = true
		destDir = filepath.Join(run.root, filepath.FromSlash(s.opts.DuplicatesDir))
		category = "Archive"
		note = DuplicateNote
		s.logger.Info("duplicate", "path", rec.Path, "original", run.relative(original), "hash", tags.Hash)
	} else {
		cls := s.classifier.Classify(tags)
		category = cls.Category
		dest := Resolve(cls.Template, tags, rec.Name)
		destDir = filepath.Dir(filepath.Join(run.root, dest))
		if cls.Rule != "" {
			note = "rule " + cls.Rule
		}
	}

	if !run.within(destDir) {
		err := &MoveError{Source: rec.Path, Dest: destDir, Err: errors.New("destination escapes sort root")}
		s.itemFailed(run, rec, err)
		return nil
	}

	if destDir == filepath.Dir(rec.Path) {
		sum.Skipped++
		s.logger.Debug("already in place", "path", rec.Path)
		rep.Report(Outcome{Kind: OutcomeSkipped, Source: rec.Path, Category: category, Note: "already in place"})
		return nil
	}

	if run.req.Simulate {
		final, err := s.fsmgr.Plan(rec.Path, destDir, func(p string) bool { return run.reserved[p] })
		if err != nil {
			s.itemFailed(run, rec, err)
			return nil
		}
		run.reserved[final] = true
		s.countMoved(sum, duplicate)
		rep.Report(Outcome{Kind: OutcomeSimulated, Source: rec.Path, Destination: final, Category: category, Note: note})
		return nil
	}

	var journalErr error
	final, err := s.fsmgr.Move(rec.Path, destDir, func(final string) error {
		entry := RollbackEntry{
			Before:    rec.Path,
			After:     final,
			Timestamp: s.clock.Now(),
			RunID:     run.req.RunID,
		}
		if err := s.journal.Record(entry); err != nil {
			journalErr = err
			return err
		}
		return nil
	})
	if journalErr != nil {
		return fmt.Errorf("recording rollback entry for %s: %w", rec.Path, journalErr)
	}
	if err != nil {
		s.itemFailed(run, rec, err)
		return nil
	}

	run.produced[final] = true
	s.countMoved(sum, duplicate)

	move := &MoveRecord{
		RunID:       run.req.RunID,
		Timestamp:   s.clock.Now(),
		Source:      rec.Path,
		Destination: final,
		Category:    category,
		Hash:        tags.Hash,
		Note:        note,
	}
	if s.database != nil {
		if err := s.database.RecordMove(move); err != nil {
			s.logger.Warn("recording move failed", "source", rec.Path, "error", err)
		}
	}

	kind := OutcomeMoved
	if duplicate {
		kind = OutcomeDuplicate
	}
	s.logger.Info("moved", "source", rec.Path, "destination", final, "category", category)
	rep.Report(Outcome{Kind: kind, Source: rec.Path, Destination: final, Category: category, Note: note})
	return nil
}

func (s *Service) countMoved(sum *SortSummary, duplicate bool) {
	if duplicate {
		sum.Duplicates++
	} else {
		sum.Moved++
	}
}

func (s *Service) itemFailed(run *sortRun, rec *FileRecord, err error) {
	run.summary.Failed++
	s.logger.Error("file not moved", "path", rec.Path, "error", err)
	if !run.req.Simulate {
		s.recordError(run.req.RunID, rec.Path, err)
	}
	run.req.Reporter.Report(Outcome{Kind: OutcomeFailed, Source: rec.Path, Err: err})
}

// excludedDirs lists the root-relative directories the walker prunes:
// everything the classifier writes into, the duplicates bucket, and any
// configured extras.
func (s *Service) excludedDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(d string) {
		d = strings.Trim(filepath.ToSlash(filepath.Clean(d)), "/")
		if d == "" || d == "." || seen[d] {
			return
		}
		seen[d] = true
		dirs = append(dirs, d)
	}
	for _, d := range s.classifier.OutputDirs() {
		add(d)
	}
	add(s.opts.DuplicatesDir)
	for _, d := range s.opts.Exclude {
		add(d)
	}
	return dirs
}

func (r *sortRun) within(dir string) bool {
	rel, err := filepath.Rel(r.root, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func (r *sortRun) relative(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
