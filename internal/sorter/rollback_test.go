package sorter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"omnisort/internal/journal"
	"omnisort/internal/sorter"
	"omnisort/internal/testutil"
)

// sorted runs a real sort over files and fails the test on error.
func sorted(t *testing.T, f *fixture, runID string) *sorter.SortSummary {
	t.Helper()
	sum, err := f.svc.Sort(context.Background(), sorter.SortRequest{Root: f.root, RunID: runID})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	return sum
}

func TestService_Rollback(t *testing.T) {
	original := map[string]string{
		"inbox/a.pdf":     "A",
		"inbox/copy.pdf":  "A",
		"inbox/photo.jpg": "P",
		"other/a.pdf":     "B",
		"setup.exe":       "E",
	}

	t.Run("apply restores the original tree", func(t *testing.T) {
		f := newFixture(t, nil, sorter.Options{Workers: 3})
		testutil.WriteTree(t, f.root, original)
		sorted(t, f, "run-1")

		var outcomes []sorter.Outcome
		sum, err := f.svc.Rollback(sorter.RollbackRequest{Apply: true, RunID: "run-2", Reporter: collect(&outcomes)})
		if err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
		if sum.Entries != 5 || sum.Restored != 5 {
			t.Errorf("summary = %+v", sum)
		}
		assertTree(t, f.root, original)

		// Entries are replayed newest first.
		if outcomes[0].Destination != filepath.Join(f.root, "setup.exe") {
			t.Errorf("first restore = %+v", outcomes[0])
		}
	})

	t.Run("preview moves nothing", func(t *testing.T) {
		f := newFixture(t, nil, sorter.Options{})
		testutil.WriteTree(t, f.root, original)
		sorted(t, f, "run-1")
		before := testutil.Snapshot(t, f.root)

		var outcomes []sorter.Outcome
		sum, err := f.svc.Rollback(sorter.RollbackRequest{Reporter: collect(&outcomes)})
		if err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
		if sum.Previewed != 5 || sum.Restored != 0 {
			t.Errorf("summary = %+v", sum)
		}
		for _, o := range outcomes {
			if o.Kind != sorter.OutcomePreview {
				t.Errorf("outcome kind = %q, want %q", o.Kind, sorter.OutcomePreview)
			}
		}
		assertTree(t, f.root, before)
	})

	t.Run("second replay restores nothing", func(t *testing.T) {
		f := newFixture(t, nil, sorter.Options{})
		testutil.WriteTree(t, f.root, original)
		sorted(t, f, "run-1")

		if _, err := f.svc.Rollback(sorter.RollbackRequest{Apply: true}); err != nil {
			t.Fatalf("first Rollback() error = %v", err)
		}
		sum, err := f.svc.Rollback(sorter.RollbackRequest{Apply: true})
		if err != nil {
			t.Fatalf("second Rollback() error = %v", err)
		}
		if sum.Restored != 0 || sum.Absent != 5 {
			t.Errorf("summary = %+v", sum)
		}
		assertTree(t, f.root, original)
	})

	t.Run("occupied original is a conflict", func(t *testing.T) {
		f := newFixture(t, nil, sorter.Options{})
		testutil.WriteTree(t, f.root, map[string]string{"a.pdf": "A", "b.pdf": "B"})
		sorted(t, f, "run-1")
		testutil.WriteTree(t, f.root, map[string]string{"a.pdf": "NEW"})

		sum, err := f.svc.Rollback(sorter.RollbackRequest{Apply: true})
		if err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
		if sum.Conflicts != 1 || sum.Restored != 1 {
			t.Errorf("summary = %+v", sum)
		}
		assertTree(t, f.root, map[string]string{
			"a.pdf":                      "NEW",
			"b.pdf":                      "B",
			"07_Documents/2023/05/a.pdf": "A",
		})
	})

	t.Run("restore failure does not stop the replay", func(t *testing.T) {
		f := newFixture(t, nil, sorter.Options{})
		testutil.WriteTree(t, f.root, map[string]string{"a.pdf": "A", "b.pdf": "B"})
		sorted(t, f, "run-1")
		stuck := filepath.Join(f.root, "07_Documents", "2023", "05", "b.pdf")
		f.fsys.FailRestore(stuck, testutil.ErrInjected)

		sum, err := f.svc.Rollback(sorter.RollbackRequest{Apply: true, RunID: "run-2"})
		if err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
		if sum.Failed != 1 || sum.Restored != 1 {
			t.Errorf("summary = %+v", sum)
		}
		assertTree(t, f.root, map[string]string{
			"a.pdf":                      "A",
			"07_Documents/2023/05/b.pdf": "B",
		})

		recs, err := f.db.ListErrors("run-2", 10)
		if err != nil {
			t.Fatalf("ListErrors() error = %v", err)
		}
		if len(recs) != 1 || recs[0].Context != stuck {
			t.Errorf("error records = %+v", recs)
		}
	})

	t.Run("last run only", func(t *testing.T) {
		f := newFixture(t, nil, sorter.Options{})
		testutil.WriteTree(t, f.root, map[string]string{"a.pdf": "A"})
		sorted(t, f, "run-1")
		testutil.WriteTree(t, f.root, map[string]string{"b.pdf": "B"})
		sorted(t, f, "run-2")

		sum, err := f.svc.Rollback(sorter.RollbackRequest{Apply: true, LastRun: true})
		if err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
		if sum.Entries != 1 || sum.Restored != 1 {
			t.Errorf("summary = %+v", sum)
		}
		assertTree(t, f.root, map[string]string{
			"07_Documents/2023/05/a.pdf": "A",
			"b.pdf":                      "B",
		})
	})

	t.Run("corrupt journal", func(t *testing.T) {
		f := newFixture(t, nil, sorter.Options{})
		path := filepath.Join(t.TempDir(), "rollback.jsonl")
		fj := journal.NewFileJournal(path)
		f.rebuild(nil, fj, sorter.Options{})

		testutil.WriteTree(t, f.root, map[string]string{"a.pdf": "A"})
		sorted(t, f, "run-1")

		fh, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			t.Fatal(err)
		}
		fh.WriteString("{not json\n")
		fh.Close()

		sum, err := f.svc.Rollback(sorter.RollbackRequest{})
		if err != nil {
			t.Fatalf("preview error = %v", err)
		}
		if !sum.Corrupt || sum.Previewed != 1 {
			t.Errorf("preview summary = %+v", sum)
		}

		_, err = f.svc.Rollback(sorter.RollbackRequest{Apply: true})
		if !errors.Is(err, sorter.ErrJournalCorrupt) {
			t.Errorf("apply error = %v, want ErrJournalCorrupt", err)
		}
		assertTree(t, f.root, map[string]string{"07_Documents/2023/05/a.pdf": "A"})
	})
}
