package generation

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job)}
}

// Create stores a new job.
func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

// GetByID returns a job by id.
func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// MarkProcessing transitions a queued job to processing.
func (r *MemoryRepo) MarkProcessing(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status != StatusQueued {
		return ErrNotFound
	}
	job.Status = StatusProcessing
	r.jobs[jobID] = job
	return nil
}

// MarkCompleted records the stored artifact for a finished job.
func (r *MemoryRepo) MarkCompleted(ctx context.Context, jobID, storageKey string, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	job.Status = StatusCompleted
	job.StorageKey = storageKey
	job.CompletedAt = &completedAt
	r.jobs[jobID] = job
	return nil
}

// MarkFailed records a job failure.
func (r *MemoryRepo) MarkFailed(ctx context.Context, jobID, errorMessage string, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	job.Status = StatusFailed
	job.ErrorMessage = errorMessage
	job.CompletedAt = &completedAt
	r.jobs[jobID] = job
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
