package sorter_test

import (
	"testing"

	"omnisort/internal/database"
	"omnisort/internal/journal"
	"omnisort/internal/sorter"
	"omnisort/internal/testutil"
)

// fixture wires a Service over a real temporary tree with test doubles for
// metadata, journal and clock.
type fixture struct {
	root     string
	svc      *sorter.Service
	fsys     *testutil.FaultyFilesystem
	provider *testutil.StubProvider
	journal  *journal.MemoryJournal
	db       *database.SQLiteDatabase
}

func newFixture(t *testing.T, rules []sorter.Rule, opts sorter.Options) *fixture {
	t.Helper()
	f := &fixture{
		root:     t.TempDir(),
		fsys:     testutil.NewFaultyFilesystem(),
		provider: testutil.NewStubProvider(),
		journal:  journal.NewMemoryJournal(),
		db:       testutil.NewTestDatabase(t),
	}
	f.rebuild(rules, f.journal, opts)
	return f
}

// rebuild replaces the service, keeping the tree and doubles.
func (f *fixture) rebuild(rules []sorter.Rule, j sorter.Journal, opts sorter.Options) {
	f.svc = sorter.NewService(
		f.fsys,
		f.provider,
		sorter.NewClassifier(rules, nil),
		j,
		f.db,
		sorter.NewNopLogger(),
		testutil.TickingClock(),
		testutil.NewStubIDGenerator(),
		opts,
	)
}

// collect returns a Reporter that appends every outcome to out.
func collect(out *[]sorter.Outcome) sorter.Reporter {
	return sorter.ReporterFunc(func(o sorter.Outcome) {
		*out = append(*out, o)
	})
}

func assertTree(t *testing.T, root string, want map[string]string) {
	t.Helper()
	got := testutil.Snapshot(t, root)
	for rel, content := range want {
		if c, ok := got[rel]; !ok {
			t.Errorf("missing %s", rel)
		} else if c != content {
			t.Errorf("%s = %q, want %q", rel, c, content)
		}
	}
	for rel := range got {
		if _, ok := want[rel]; !ok {
			t.Errorf("unexpected file %s", rel)
		}
	}
}
