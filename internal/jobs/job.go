package jobs

import (
	"time"
)

// Status represents the current state of a transcription job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is one submitted transcription request. A job is created pending,
// moves to processing when a runner picks it up, and ends completed or
// failed. Terminal transitions are one-way; Result is set only on a
// completed job. The source file is owned exclusively by the job until
// the runner deletes it after reaching a terminal state.
type Job struct {
	ID          string    `json:"id"`
	SourcePath  string    `json:"-"` // Temp upload path, never exposed over the API
	Language    string    `json:"language"`
	Status      Status    `json:"status"`
	Result      string    `json:"-"` // Encoded subtitle text, delivered as a download
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Copy returns a snapshot of the job, safe to hand to readers while a
// runner keeps mutating the stored record.
func (j *Job) Copy() *Job {
	c := *j
	return &c
}

// Event describes a job state change for SSE streaming.
type Event struct {
	Type string `json:"type"` // "created", "processing", "completed", "failed"
	Job  *Job   `json:"job"`
}
