package jobs

import "time"

type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusError
}

// Job is a snapshot of one archive export. Values handed out by the Manager
// are copies; mutating them has no effect on the job table.
type Job struct {
	ID         string
	Status     Status
	Progress   int
	SourcePath string
	// OutputPath is the storage location of the archive, set once ready.
	OutputPath string
	// Err keeps the failure cause for logs; it is never shown to clients.
	Err        string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt time.Time
}
