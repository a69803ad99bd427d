package sorter

// OutcomeKind classifies what happened to one file or journal entry.
type OutcomeKind string

const (
	OutcomeMoved     OutcomeKind = "MOVE"
	OutcomeSimulated OutcomeKind = "SIMULATED MOVE"
	OutcomeDuplicate OutcomeKind = "DUPLICATE"
	OutcomeFailed    OutcomeKind = "ERROR"
	OutcomeRestored  OutcomeKind = "RESTORE"
	OutcomePreview   OutcomeKind = "PREVIEW"
	OutcomeSkipped   OutcomeKind = "SKIP"
)

// Outcome is one progress event.
type Outcome struct {
	Kind        OutcomeKind
	Source      string
	Destination string
	Category    string
	Note        string
	Err         error
}

// Reporter receives progress events as the pipeline runs.
type Reporter interface {
	Report(o Outcome)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Report(Outcome) {}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Outcome)

func (f ReporterFunc) Report(o Outcome) { f(o) }
