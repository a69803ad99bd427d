package sorter

import (
	"errors"
	"fmt"
)

// RollbackRequest describes one replay of the rollback journal.
type RollbackRequest struct {
	// Apply moves files back. Without it the replay only previews.
	Apply bool

	// LastRun limits the replay to entries written by the most recent run.
	LastRun bool

	// RunID stamps error records written while applying.
	RunID string

	Reporter Reporter
}

// RollbackSummary counts what a replay did.
type RollbackSummary struct {
	Entries   int
	Restored  int
	Previewed int
	Absent    int
	Conflicts int
	Failed    int

	// Corrupt is set when the journal was only partially readable (preview only).
	Corrupt bool
}

// Rollback replays the journal in reverse, moving each recorded file from
// its destination back to where it came from.
//
// An entry whose destination no longer exists is skipped: there is nothing
// to restore, or it was restored already. An entry whose original path is
// occupied again is skipped as a conflict. Replay never rewrites the journal,
// so running it twice restores nothing the second time.
func (s *Service) Rollback(req RollbackRequest) (*RollbackSummary, error) {
	if req.Reporter == nil {
		req.Reporter = NopReporter{}
	}
	sum := &RollbackSummary{}

	entries, err := s.journal.Load()
	if err != nil {
		if !errors.Is(err, ErrJournalCorrupt) || req.Apply {
			return nil, fmt.Errorf("loading rollback journal: %w", err)
		}
		sum.Corrupt = true
		s.logger.Warn("rollback journal partially readable", "entries", len(entries), "error", err)
	}

	if req.LastRun {
		entries = lastRunEntries(entries)
	}
	sum.Entries = len(entries)

	for i := len(entries) - 1; i >= 0; i-- {
		s.replayEntry(req, sum, entries[i])
	}

	s.logger.Info("rollback complete",
		"apply", req.Apply, "entries", sum.Entries, "restored", sum.Restored,
		"previewed", sum.Previewed, "absent", sum.Absent, "conflicts", sum.Conflicts, "failed", sum.Failed)
	return sum, nil
}

func (s *Service) replayEntry(req RollbackRequest, sum *RollbackSummary, e RollbackEntry) {
	rep := req.Reporter

	afterExists, err := s.fsmgr.Exists(e.After)
	if err != nil {
		s.replayFailed(req, sum, e, fmt.Errorf("checking %s: %w", e.After, err))
		return
	}
	if !afterExists {
		sum.Absent++
		s.logger.Debug("nothing to restore", "path", e.After)
		rep.Report(Outcome{Kind: OutcomeSkipped, Source: e.After, Destination: e.Before, Note: "nothing to restore"})
		return
	}

	beforeExists, err := s.fsmgr.Exists(e.Before)
	if err != nil {
		s.replayFailed(req, sum, e, fmt.Errorf("checking %s: %w", e.Before, err))
		return
	}
	if beforeExists {
		sum.Conflicts++
		s.logger.Warn("rollback conflict, original path occupied", "before", e.Before, "after", e.After)
		rep.Report(Outcome{Kind: OutcomeSkipped, Source: e.After, Destination: e.Before, Note: "conflict: original path occupied"})
		return
	}

	if !req.Apply {
		sum.Previewed++
		rep.Report(Outcome{Kind: OutcomePreview, Source: e.After, Destination: e.Before})
		return
	}

	if err := s.fsmgr.Restore(e.After, e.Before); err != nil {
		s.replayFailed(req, sum, e, err)
		return
	}
	sum.Restored++
	s.logger.Info("restored", "from", e.After, "to", e.Before)
	rep.Report(Outcome{Kind: OutcomeRestored, Source: e.After, Destination: e.Before})
}

func (s *Service) replayFailed(req RollbackRequest, sum *RollbackSummary, e RollbackEntry, err error) {
	sum.Failed++
	s.logger.Error("restore failed", "before", e.Before, "after", e.After, "error", err)
	if req.Apply {
		s.recordError(req.RunID, e.After, err)
	}
	req.Reporter.Report(Outcome{Kind: OutcomeFailed, Source: e.After, Destination: e.Before, Err: err})
}

// lastRunEntries keeps the entries sharing the run ID of the final entry.
func lastRunEntries(entries []RollbackEntry) []RollbackEntry {
	if len(entries) == 0 {
		return entries
	}
	last := entries[len(entries)-1].RunID
	var out []RollbackEntry
	for _, e := range entries {
		if e.RunID == last {
			out = append(out, e)
		}
	}
	return out
}
