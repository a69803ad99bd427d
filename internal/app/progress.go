package app

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"omnisort/internal/sorter"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// FormatOutcome renders one outcome as a single console line.
func FormatOutcome(o sorter.Outcome) string {
	switch o.Kind {
	case sorter.OutcomeFailed:
		if o.Source == "" {
			return fmt.Sprintf("[%s] %v", o.Kind, o.Err)
		}
		return fmt.Sprintf("[%s] %s: %v", o.Kind, o.Source, o.Err)
	case sorter.OutcomeSkipped:
		if o.Note != "" {
			return fmt.Sprintf("[%s] %s (%s)", o.Kind, o.Source, o.Note)
		}
		return fmt.Sprintf("[%s] %s", o.Kind, o.Source)
	case sorter.OutcomeRestored, sorter.OutcomePreview:
		return fmt.Sprintf("[%s] %s -> %s", o.Kind, o.Source, o.Destination)
	}

	line := fmt.Sprintf("[%s] %s -> %s", o.Kind, o.Source, o.Destination)
	switch {
	case o.Kind == sorter.OutcomeDuplicate && o.Note != "":
		line += " (" + o.Note + ")"
	case o.Category != "":
		line += " (" + o.Category + ")"
	}
	return line
}

// LineReporter prints one line per outcome.
type LineReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineReporter creates a LineReporter writing to w.
func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

func (r *LineReporter) Report(o sorter.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, FormatOutcome(o))
}

const progressTemplate = `{{counters . }} files {{string . "status"}} {{etime . }}`

// ProgressReporter drives a terminal progress counter instead of printing
// a line per file. Failures are still printed, above the bar.
type ProgressReporter struct {
	mu     sync.Mutex
	bar    *pb.ProgressBar
	w      io.Writer
	counts map[sorter.OutcomeKind]int
}

// NewProgressReporter starts a progress counter on w. The total is unknown
// up front, so the bar shows a running count.
func NewProgressReporter(w io.Writer) *ProgressReporter {
	bar := pb.ProgressBarTemplate(progressTemplate).New(0)
	bar.SetWriter(w)
	bar.Start()
	return &ProgressReporter{
		bar:    bar,
		w:      w,
		counts: make(map[sorter.OutcomeKind]int),
	}
}

func (p *ProgressReporter) Report(o sorter.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[o.Kind]++
	p.bar.Increment()
	p.bar.Set("status", p.status())
	if o.Kind == sorter.OutcomeFailed {
		fmt.Fprintf(p.w, "\r%s\n", FormatOutcome(o))
	}
}

// Counts returns how many outcomes of kind have been reported.
func (p *ProgressReporter) Counts(kind sorter.OutcomeKind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[kind]
}

// Finish stops the counter and leaves its final state on screen.
func (p *ProgressReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Finish()
}

func (p *ProgressReporter) status() string {
	return fmt.Sprintf("moved:%d dup:%d skip:%d err:%d",
		p.counts[sorter.OutcomeMoved]+p.counts[sorter.OutcomeSimulated]+p.counts[sorter.OutcomeRestored],
		p.counts[sorter.OutcomeDuplicate],
		p.counts[sorter.OutcomeSkipped],
		p.counts[sorter.OutcomeFailed])
}
