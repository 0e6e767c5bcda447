package app

import "time"

// Operation tracks one CLI invocation. Its ID tags every log line and the
// runs row of the SQLite export.
type Operation struct {
	ID         string
	Name       string
	Parameters string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string // "running", "success" or "error"
}

// NewOperation creates an operation in the running state.
func NewOperation(id, name, parameters string, startedAt time.Time) *Operation {
	return &Operation{
		ID:         id,
		Name:       name,
		Parameters: parameters,
		StartedAt:  startedAt,
		Status:     "running",
	}
}

// Finish records the outcome. Only the first call has an effect.
func (op *Operation) Finish(err error, at time.Time) {
	if op.Finished() {
		return
	}
	op.FinishedAt = at
	op.Status = "success"
	if err != nil {
		op.Status = "error"
	}
}

// Finished reports whether Finish has been called.
func (op *Operation) Finished() bool {
	return op.Status != "running"
}

// Duration returns the elapsed time, or zero while running.
func (op *Operation) Duration() time.Duration {
	if !op.Finished() {
		return 0
	}
	return op.FinishedAt.Sub(op.StartedAt)
}
