package resumes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-vault/internal/shared/metrics"
	"resume-vault/internal/shared/telemetry"
)

// RollbackCoordinator restores a past snapshot as a new forward version.
// History stays append-only and linear: the target version and everything
// between it and the present are never edited or removed.
type RollbackCoordinator struct {
	Repo Repo
}

// Rollback appends a new version carrying the target version's data and
// advances the current pointer to it. Returns the new version number.
func (c *RollbackCoordinator) Rollback(ctx context.Context, resumeID string, targetVersion int) (int, error) {
	if strings.TrimSpace(resumeID) == "" || targetVersion < 1 {
		return 0, ErrInvalidInput
	}

	target, err := c.Repo.GetVersion(ctx, resumeID, targetVersion)
	if err != nil {
		return 0, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, err := c.Repo.Get(ctx, resumeID)
		if err != nil {
			return 0, err
		}

		changed := DiffSections(current.Data, target.Data)
		version := ResumeVersion{
			ResumeID:        resumeID,
			VersionNumber:   current.CurrentVersion + 1,
			Data:            target.Data,
			ChangedSections: changed,
			ChangeSummary:   fmt.Sprintf("Rolled back to v%d", targetVersion),
			ChangeType:      ChangeTypeRollback,
			CreatedAt:       time.Now().UTC(),
		}
		err = c.Repo.AppendVersionAndAdvance(ctx, resumeID, current.CurrentVersion, version, nil, nil)
		if err == nil {
			metrics.IncVersionCreated()
			metrics.IncRollback()
			telemetry.Info("resume.rollback", map[string]any{
				"resume_id":      resumeID,
				"target_version": targetVersion,
				"new_version":    version.VersionNumber,
				"changed":        changed,
				"attempt":        attempt,
			})
			return version.VersionNumber, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return 0, err
		}
		lastErr = err
		metrics.IncVersionConflictRetried()
	}
	metrics.IncVersionConflictExhausted()
	return 0, lastErr
}
