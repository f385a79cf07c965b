package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const pgUniqueViolation = "23505"

// CreateWithFirstVersion inserts a new resume and its first version in one
// transaction. A duplicate (resume_id, version_number) or duplicate resume id
// maps to ErrVersionConflict.
func (r *PGRepo) CreateWithFirstVersion(ctx context.Context, resume Resume, version ResumeVersion) error {
	dataJSON, err := json.Marshal(resume.Data)
	if err != nil {
		return fmt.Errorf("marshal resume data: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertResume = `
INSERT INTO resumes (id, title, meta_code, data, current_version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)`
	if _, err := tx.ExecContext(ctx, insertResume,
		resume.ID,
		resume.Title,
		resume.MetaCode,
		dataJSON,
		resume.CurrentVersion,
		resume.CreatedAt,
	); err != nil {
		return mapPGError(err)
	}

	if err := insertVersion(ctx, tx, version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get fetches a resume by id.
func (r *PGRepo) Get(ctx context.Context, resumeID string) (Resume, error) {
	const query = `
SELECT id, title, meta_code, data, current_version, created_at, updated_at
FROM resumes
WHERE id = $1`
	return r.scanResume(r.DB.QueryRowContext(ctx, query, resumeID))
}

// GetByMetaCode fetches a resume by its classifier code.
func (r *PGRepo) GetByMetaCode(ctx context.Context, metaCode string) (Resume, error) {
	const query = `
SELECT id, title, meta_code, data, current_version, created_at, updated_at
FROM resumes
WHERE meta_code = $1
ORDER BY created_at ASC
LIMIT 1`
	return r.scanResume(r.DB.QueryRowContext(ctx, query, metaCode))
}

// AppendVersionAndAdvance appends a version and advances the current pointer
// in one transaction, conditional on current_version == expectedVersion.
func (r *PGRepo) AppendVersionAndAdvance(ctx context.Context, resumeID string, expectedVersion int, version ResumeVersion, title, metaCode *string) error {
	dataJSON, err := json.Marshal(version.Data)
	if err != nil {
		return fmt.Errorf("marshal version data: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertVersion(ctx, tx, version); err != nil {
		return err
	}

	const advance = `
UPDATE resumes
SET data = $1,
    current_version = $2,
    title = COALESCE($3, title),
    meta_code = COALESCE($4, meta_code),
    updated_at = $5
WHERE id = $6 AND current_version = $7`
	res, err := tx.ExecContext(ctx, advance,
		dataJSON,
		version.VersionNumber,
		nullString(title),
		nullString(metaCode),
		time.Now().UTC(),
		resumeID,
		expectedVersion,
	)
	if err != nil {
		return mapPGError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// UpdateMeta updates cosmetic fields only.
func (r *PGRepo) UpdateMeta(ctx context.Context, resumeID string, title, metaCode *string) error {
	if title == nil && metaCode == nil {
		return nil
	}
	const query = `
UPDATE resumes
SET title = COALESCE($1, title),
    meta_code = COALESCE($2, meta_code),
    updated_at = $3
WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, nullString(title), nullString(metaCode), time.Now().UTC(), resumeID)
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

// UpdateDataCAS replaces the resume's data without a version side effect,
// conditional on the current pointer not having moved.
func (r *PGRepo) UpdateDataCAS(ctx context.Context, resumeID string, expectedVersion int, data SectionMap) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal resume data: %w", err)
	}
	const query = `
UPDATE resumes
SET data = $1, updated_at = $2
WHERE id = $3 AND current_version = $4`
	res, err := r.DB.ExecContext(ctx, query, dataJSON, time.Now().UTC(), resumeID, expectedVersion)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// GetVersion fetches one immutable snapshot.
func (r *PGRepo) GetVersion(ctx context.Context, resumeID string, versionNumber int) (ResumeVersion, error) {
	const query = `
SELECT resume_id, version_number, data, changed_sections, change_summary, change_type, created_at
FROM resume_versions
WHERE resume_id = $1 AND version_number = $2`
	var (
		v           ResumeVersion
		dataJSON    []byte
		changedJSON []byte
	)
	err := r.DB.QueryRowContext(ctx, query, resumeID, versionNumber).Scan(
		&v.ResumeID,
		&v.VersionNumber,
		&dataJSON,
		&changedJSON,
		&v.ChangeSummary,
		&v.ChangeType,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResumeVersion{}, ErrNotFound
		}
		return ResumeVersion{}, err
	}
	if err := json.Unmarshal(dataJSON, &v.Data); err != nil {
		return ResumeVersion{}, fmt.Errorf("unmarshal version data: %w", err)
	}
	if err := json.Unmarshal(changedJSON, &v.ChangedSections); err != nil {
		return ResumeVersion{}, fmt.Errorf("unmarshal changed sections: %w", err)
	}
	return v, nil
}

// ListVersions lists version summaries newest-first. Data is not selected.
func (r *PGRepo) ListVersions(ctx context.Context, resumeID string) ([]VersionSummary, error) {
	const query = `
SELECT version_number, changed_sections, change_summary, change_type, created_at
FROM resume_versions
WHERE resume_id = $1
ORDER BY version_number DESC`
	rows, err := r.DB.QueryContext(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VersionSummary
	for rows.Next() {
		var (
			s           VersionSummary
			changedJSON []byte
		)
		if err := rows.Scan(&s.VersionNumber, &changedJSON, &s.ChangeSummary, &s.ChangeType, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(changedJSON, &s.ChangedSections); err != nil {
			return nil, fmt.Errorf("unmarshal changed sections: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func insertVersion(ctx context.Context, tx *sql.Tx, v ResumeVersion) error {
	dataJSON, err := json.Marshal(v.Data)
	if err != nil {
		return fmt.Errorf("marshal version data: %w", err)
	}
	changedJSON, err := json.Marshal(v.ChangedSections)
	if err != nil {
		return fmt.Errorf("marshal changed sections: %w", err)
	}
	const query = `
INSERT INTO resume_versions (resume_id, version_number, data, changed_sections, change_summary, change_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, query,
		v.ResumeID,
		v.VersionNumber,
		dataJSON,
		changedJSON,
		v.ChangeSummary,
		v.ChangeType,
		v.CreatedAt,
	); err != nil {
		return mapPGError(err)
	}
	return nil
}

// mapPGError translates a unique violation on (resume_id, version_number)
// into ErrVersionConflict so callers can retry.
func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrVersionConflict
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *PGRepo) scanResume(row *sql.Row) (Resume, error) {
	var (
		res      Resume
		dataJSON []byte
	)
	err := row.Scan(
		&res.ID,
		&res.Title,
		&res.MetaCode,
		&dataJSON,
		&res.CurrentVersion,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if err := json.Unmarshal(dataJSON, &res.Data); err != nil {
		return Resume{}, fmt.Errorf("unmarshal resume data: %w", err)
	}
	return res, nil
}

var _ Repo = (*PGRepo)(nil)
