package app

// Operation statuses recorded when a run finishes.
const (
	StatusSuccess = "success"
	StatusPartial = "partial" // completed with per-item failures
	StatusError   = "error"
)

// Operation tracks a CLI operation that may mutate the tree or the history.
// Operations are created in memory with ID=0 and a fresh RunID. Only
// mutating commands persist them (giving them an auto-increment ID from the database).
type Operation struct {
	ID         int64
	RunID      string
	Operation  string
	Parameters string
	Status     string
}

// NewOperation creates a new in-memory operation.
func NewOperation(runID, operation, parameters string) *Operation {
	return &Operation{
		RunID:      runID,
		Operation:  operation,
		Parameters: parameters,
		Status:     StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = StatusError
}

// Degrade marks a still-successful operation as having per-item failures.
func (op *Operation) Degrade() {
	if op.Status == StatusSuccess {
		op.Status = StatusPartial
	}
}
