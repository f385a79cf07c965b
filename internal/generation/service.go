package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-vault/internal/queue"
	"resume-vault/internal/resumes"
	"resume-vault/internal/shared/metrics"
	"resume-vault/internal/shared/storage/object"
	"resume-vault/internal/shared/telemetry"
)

// Service contains business logic for generation jobs. Job creation is an
// independent write: it validates the (resume, version) pair and enqueues,
// holding no version-store locks.
type Service struct {
	Repo      Repo
	Snapshots *resumes.SnapshotResolver
	Queue     queue.Client
	Store     object.ObjectStore
}

// CreateJob validates the snapshot reference, records a queued job, and
// enqueues a message for the worker.
func (s *Service) CreateJob(ctx context.Context, resumeID string, versionNumber int, requestID string) (Job, error) {
	if strings.TrimSpace(resumeID) == "" || versionNumber < 1 {
		return Job{}, ErrInvalidInput
	}
	if s.Repo == nil || s.Snapshots == nil || s.Queue == nil {
		return Job{}, errors.New("missing dependencies")
	}

	if _, err := s.Snapshots.Resolve(ctx, resumeID, versionNumber); err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return Job{}, ErrNotFound
		}
		if errors.Is(err, resumes.ErrInvalidInput) {
			return Job{}, ErrInvalidInput
		}
		return Job{}, err
	}

	job := Job{
		ID:            uuid.NewString(),
		ResumeID:      resumeID,
		VersionNumber: versionNumber,
		Status:        StatusQueued,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}

	msg := queue.Message{
		JobID:         job.ID,
		ResumeID:      resumeID,
		VersionNumber: versionNumber,
		RequestID:     requestID,
		EnqueuedAt:    job.CreatedAt.Format(time.RFC3339),
		Schema:        1,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		now := time.Now().UTC()
		if markErr := s.Repo.MarkFailed(ctx, job.ID, "enqueue failed", now); markErr != nil {
			telemetry.Error("generation.mark_failed", map[string]any{
				"job_id": job.ID,
				"error":  markErr.Error(),
			})
		}
		return Job{}, fmt.Errorf("enqueue generation job: %w", err)
	}

	metrics.IncGenerationQueued()
	telemetry.Info("generation.queued", map[string]any{
		"job_id":     job.ID,
		"resume_id":  resumeID,
		"version":    versionNumber,
		"request_id": requestID,
	})
	return job, nil
}

// Get returns a job by id.
func (s *Service) Get(ctx context.Context, jobID string) (Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return Job{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, jobID)
}

// Process runs one job end to end: resolve the immutable snapshot exactly
// once, render, store the artifact, and record the outcome. Re-delivery of a
// finished job is a no-op.
func (s *Service) Process(ctx context.Context, jobID string) (Job, error) {
	if s.Store == nil {
		return Job{}, errors.New("missing object store")
	}
	start := time.Now()

	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if job.Status == StatusCompleted || job.Status == StatusFailed {
		return job, nil
	}
	if err := s.Repo.MarkProcessing(ctx, jobID); err != nil && !errors.Is(err, ErrNotFound) {
		return Job{}, err
	}

	data, err := s.Snapshots.Resolve(ctx, job.ResumeID, job.VersionNumber)
	if err != nil {
		return s.fail(ctx, job, fmt.Errorf("resolve snapshot: %w", err))
	}

	artifact, err := RenderArtifact(job.ResumeID, job.VersionNumber, data)
	if err != nil {
		return s.fail(ctx, job, fmt.Errorf("render artifact: %w", err))
	}

	storageKey, _, _, err := s.Store.Save(ctx, job.ResumeID, ArtifactFileName(job.VersionNumber), bytes.NewReader(artifact))
	if err != nil {
		return s.fail(ctx, job, fmt.Errorf("store artifact: %w", err))
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.MarkCompleted(ctx, jobID, storageKey, completedAt); err != nil {
		return Job{}, err
	}

	job.Status = StatusCompleted
	job.StorageKey = storageKey
	job.CompletedAt = &completedAt

	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	telemetry.Info("generation.completed", map[string]any{
		"job_id":      job.ID,
		"resume_id":   job.ResumeID,
		"version":     job.VersionNumber,
		"storage_key": storageKey,
	})
	return job, nil
}

func (s *Service) fail(ctx context.Context, job Job, cause error) (Job, error) {
	now := time.Now().UTC()
	if err := s.Repo.MarkFailed(ctx, job.ID, cause.Error(), now); err != nil {
		telemetry.Error("generation.mark_failed", map[string]any{
			"job_id": job.ID,
			"error":  err.Error(),
		})
	}
	metrics.IncGenerationFailed()
	telemetry.Error("generation.failed", map[string]any{
		"job_id":    job.ID,
		"resume_id": job.ResumeID,
		"version":   job.VersionNumber,
		"error":     cause.Error(),
	})
	return Job{}, cause
}
