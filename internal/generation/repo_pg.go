package generation

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new generation job.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO generation_jobs (id, resume_id, version_number, status, storage_key, error_message, created_at, completed_at)
VALUES ($1, $2, $3, $4, NULL, NULL, $5, NULL)`
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.ResumeID,
		job.VersionNumber,
		job.Status,
		job.CreatedAt,
	)
	return err
}

// GetByID fetches a job by id.
func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	const query = `
SELECT id, resume_id, version_number, status, storage_key, error_message, created_at, completed_at
FROM generation_jobs
WHERE id = $1`
	var (
		job          Job
		storageKey   sql.NullString
		errorMessage sql.NullString
		completedAt  sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, jobID).Scan(
		&job.ID,
		&job.ResumeID,
		&job.VersionNumber,
		&job.Status,
		&storageKey,
		&errorMessage,
		&job.CreatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	if storageKey.Valid {
		job.StorageKey = storageKey.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = errorMessage.String
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return job, nil
}

// MarkProcessing transitions a queued job to processing.
func (r *PGRepo) MarkProcessing(ctx context.Context, jobID string) error {
	const query = `
UPDATE generation_jobs
SET status = $1
WHERE id = $2 AND status = $3`
	res, err := r.DB.ExecContext(ctx, query, StatusProcessing, jobID, StatusQueued)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkCompleted records the stored artifact for a finished job.
func (r *PGRepo) MarkCompleted(ctx context.Context, jobID, storageKey string, completedAt time.Time) error {
	const query = `
UPDATE generation_jobs
SET status = $1, storage_key = $2, completed_at = $3
WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, StatusCompleted, storageKey, completedAt, jobID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed records a job failure.
func (r *PGRepo) MarkFailed(ctx context.Context, jobID, errorMessage string, completedAt time.Time) error {
	const query = `
UPDATE generation_jobs
SET status = $1, error_message = $2, completed_at = $3
WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, StatusFailed, errorMessage, completedAt, jobID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
