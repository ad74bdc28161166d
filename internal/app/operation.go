package app

import "time"

// Operation tracks the CLI command an App was opened for. Its outcome is
// logged when the App closes.
type Operation struct {
	Name      string
	Started   time.Time
	Status    string // "success" or "error"
	LastError error
}

// NewOperation creates an operation that starts out successful.
func NewOperation(name string, started time.Time) *Operation {
	return &Operation{
		Name:    name,
		Started: started,
		Status:  "success",
	}
}

// Record marks the operation failed if err is non-nil and returns err.
func (op *Operation) Record(err error) error {
	if err != nil {
		op.Status = "error"
		op.LastError = err
	}
	return err
}

// Failed reports whether any recorded step failed.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
