package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"omnisort/internal/sorter"
)

func TestFormatOutcome(t *testing.T) {
	tests := []struct {
		name string
		o    sorter.Outcome
		want string
	}{
		{
			name: "move",
			o:    sorter.Outcome{Kind: sorter.OutcomeMoved, Source: "/r/a.jpg", Destination: "/r/03_Photos/a.jpg", Category: "Photos"},
			want: "[MOVE] /r/a.jpg -> /r/03_Photos/a.jpg (Photos)",
		},
		{
			name: "simulated move",
			o:    sorter.Outcome{Kind: sorter.OutcomeSimulated, Source: "/r/a.pdf", Destination: "/r/07_Documents/a.pdf", Category: "Documents"},
			want: "[SIMULATED MOVE] /r/a.pdf -> /r/07_Documents/a.pdf (Documents)",
		},
		{
			name: "duplicate shows original",
			o:    sorter.Outcome{Kind: sorter.OutcomeDuplicate, Source: "/r/b.jpg", Destination: "/r/99_Archive/Duplicates/b.jpg", Category: "Archive", Note: "duplicate"},
			want: "[DUPLICATE] /r/b.jpg -> /r/99_Archive/Duplicates/b.jpg (duplicate)",
		},
		{
			name: "error",
			o:    sorter.Outcome{Kind: sorter.OutcomeFailed, Source: "/r/c.txt", Err: errors.New("permission denied")},
			want: "[ERROR] /r/c.txt: permission denied",
		},
		{
			name: "error without path",
			o:    sorter.Outcome{Kind: sorter.OutcomeFailed, Err: errors.New("walk failed")},
			want: "[ERROR] walk failed",
		},
		{
			name: "skip with note",
			o:    sorter.Outcome{Kind: sorter.OutcomeSkipped, Source: "/r/x", Note: "already in place"},
			want: "[SKIP] /r/x (already in place)",
		},
		{
			name: "restore",
			o:    sorter.Outcome{Kind: sorter.OutcomeRestored, Source: "/r/03_Photos/a.jpg", Destination: "/r/a.jpg"},
			want: "[RESTORE] /r/03_Photos/a.jpg -> /r/a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatOutcome(tt.o); got != tt.want {
				t.Errorf("FormatOutcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineReporter(&buf)

	r.Report(sorter.Outcome{Kind: sorter.OutcomeMoved, Source: "a", Destination: "b"})
	r.Report(sorter.Outcome{Kind: sorter.OutcomeSkipped, Source: "c"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if lines[1] != "[SKIP] c" {
		t.Errorf("line 2 = %q, want %q", lines[1], "[SKIP] c")
	}
}

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf)

	p.Report(sorter.Outcome{Kind: sorter.OutcomeMoved, Source: "a"})
	p.Report(sorter.Outcome{Kind: sorter.OutcomeMoved, Source: "b"})
	p.Report(sorter.Outcome{Kind: sorter.OutcomeFailed, Source: "c", Err: errors.New("boom")})
	p.Finish()

	if got := p.Counts(sorter.OutcomeMoved); got != 2 {
		t.Errorf("Counts(MOVE) = %d, want 2", got)
	}
	if got := p.Counts(sorter.OutcomeFailed); got != 1 {
		t.Errorf("Counts(ERROR) = %d, want 1", got)
	}
	if !strings.Contains(buf.String(), "[ERROR] c: boom") {
		t.Errorf("output = %q, want failure line", buf.String())
	}
}
