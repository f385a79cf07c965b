package generation

import (
	"context"
	"time"
)

// Repo defines persistence operations for generation jobs.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	MarkProcessing(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID, storageKey string, completedAt time.Time) error
	MarkFailed(ctx context.Context, jobID, errorMessage string, completedAt time.Time) error
}
