package generation

import "time"

// Job statuses.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job records a request to render an artifact from one immutable
// (resume, version) snapshot. The snapshot reference never changes after
// creation, so a job always renders the same bytes no matter when it runs.
type Job struct {
	ID            string
	ResumeID      string
	VersionNumber int
	Status        string
	StorageKey    string
	ErrorMessage  string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}
