package sorter

import "fmt"

// GetHistory returns the most recent runs, ordered newest first.
func (s *Service) GetHistory(limit int) ([]*Run, error) {
	runs, err := s.database.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// GetMoves returns recorded moves, newest first. An empty runID covers every run.
func (s *Service) GetMoves(runID string, limit int) ([]*MoveRecord, error) {
	moves, err := s.database.ListMoves(runID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing moves: %w", err)
	}
	return moves, nil
}

// GetErrors returns recorded per-item failures, newest first. An empty runID covers every run.
func (s *Service) GetErrors(runID string, limit int) ([]*ErrorRecord, error) {
	errs, err := s.database.ListErrors(runID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing errors: %w", err)
	}
	return errs, nil
}

// FileTrace explains where a sorted file came from.
type FileTrace struct {
	Move *MoveRecord
	Run  *Run
}

// TraceFile looks up the move that placed a file at path. It returns nil
// when the file was not placed by a recorded move.
func (s *Service) TraceFile(path string) (*FileTrace, error) {
	move, err := s.database.FindMoveByDestination(path)
	if err != nil {
		return nil, fmt.Errorf("finding move: %w", err)
	}
	if move == nil {
		return nil, nil
	}
	run, err := s.database.FindRunByRunID(move.RunID)
	if err != nil {
		return nil, fmt.Errorf("finding run: %w", err)
	}
	return &FileTrace{Move: move, Run: run}, nil
}

// ExportHistory writes a standalone copy of the history database to destPath.
func (s *Service) ExportHistory(destPath string) error {
	if err := s.database.BackupTo(destPath); err != nil {
		return fmt.Errorf("exporting history: %w", err)
	}
	s.logger.Info("history exported", "path", destPath)
	return nil
}
