package sorter_test

import (
	"os"
	"path/filepath"
	"testing"

	"omnisort/internal/sorter"
	"omnisort/internal/testutil"
)

func TestService_History(t *testing.T) {
	f := newFixture(t, nil, sorter.Options{})
	testutil.WriteTree(t, f.root, map[string]string{"a.jpg": "A", "b.jpg": "A"})

	run, err := f.db.CreateRun("run-1", "Sort", f.root)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	sorted(t, f, "run-1")
	if err := f.db.FinishRun(run.ID, "success"); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	t.Run("GetHistory", func(t *testing.T) {
		runs, err := f.svc.GetHistory(10)
		if err != nil {
			t.Fatalf("GetHistory() error = %v", err)
		}
		if len(runs) != 1 || runs[0].Status != "success" || runs[0].FinishedAt == nil {
			t.Errorf("runs = %+v", runs)
		}
	})

	t.Run("GetMoves", func(t *testing.T) {
		moves, err := f.svc.GetMoves("", 10)
		if err != nil {
			t.Fatalf("GetMoves() error = %v", err)
		}
		if len(moves) != 2 {
			t.Fatalf("got %d moves, want 2", len(moves))
		}
		// Newest first: the duplicate was moved second.
		if moves[0].Note != sorter.DuplicateNote || moves[0].Category != "Archive" {
			t.Errorf("moves[0] = %+v", moves[0])
		}
		if none, _ := f.svc.GetMoves("run-404", 10); len(none) != 0 {
			t.Errorf("GetMoves(run-404) = %d moves, want 0", len(none))
		}
	})

	t.Run("TraceFile", func(t *testing.T) {
		dest := filepath.Join(f.root, "99_Archive", "Duplicates", "b.jpg")
		trace, err := f.svc.TraceFile(dest)
		if err != nil {
			t.Fatalf("TraceFile() error = %v", err)
		}
		if trace == nil {
			t.Fatal("TraceFile() = nil, want trace")
		}
		if trace.Move.Source != filepath.Join(f.root, "b.jpg") {
			t.Errorf("Source = %q", trace.Move.Source)
		}
		if trace.Run == nil || trace.Run.RunID != "run-1" {
			t.Errorf("Run = %+v", trace.Run)
		}

		trace, err = f.svc.TraceFile(filepath.Join(f.root, "never.pdf"))
		if err != nil || trace != nil {
			t.Errorf("TraceFile(unknown) = %+v, %v, want nil, nil", trace, err)
		}
	})

	t.Run("GetErrors", func(t *testing.T) {
		errs, err := f.svc.GetErrors("", 10)
		if err != nil {
			t.Fatalf("GetErrors() error = %v", err)
		}
		if len(errs) != 0 {
			t.Errorf("got %d errors, want 0", len(errs))
		}
	})

	t.Run("ExportHistory", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "export.db")
		if err := f.svc.ExportHistory(dest); err != nil {
			t.Fatalf("ExportHistory() error = %v", err)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("export missing: %v", err)
		}
	})
}
