package resumes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-vault/internal/shared/metrics"
	"resume-vault/internal/shared/telemetry"
)

// maxWriteAttempts bounds the read-diff-append retry loop. After this many
// lost races the conflict is surfaced to the caller.
const maxWriteAttempts = 3

// knownSections are the section names accepted on partial updates. A section
// already present on the resume is also accepted, whatever its name.
var knownSections = map[string]struct{}{
	"basics":    {},
	"work":      {},
	"skills":    {},
	"education": {},
	"projects":  {},
	"meta":      {},
}

// ReplaceResult reports the outcome of a full update.
type ReplaceResult struct {
	Applied    bool
	NewVersion int
}

// IngestResult reports the outcome of an upload-by-classifier.
type IngestResult struct {
	ResumeID      string
	VersionNumber int
	Created       bool
}

// Service mediates every resume mutation through the diff engine and the
// version log. It is the only writer of the current pointer.
type Service struct {
	Repo Repo
}

// Get returns the current projection of a resume.
func (s *Service) Get(ctx context.Context, resumeID string) (Resume, error) {
	if strings.TrimSpace(resumeID) == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, resumeID)
}

// Replace applies a full update. An empty diff updates cosmetic fields only
// and creates no version; otherwise a new edit version is appended and the
// current pointer advances with it.
func (s *Service) Replace(ctx context.Context, resumeID string, data map[string]any, title, metaCode *string) (ReplaceResult, error) {
	if strings.TrimSpace(resumeID) == "" {
		return ReplaceResult{}, ErrInvalidInput
	}
	if data == nil {
		return ReplaceResult{}, fmt.Errorf("%w: data is required", ErrInvalidInput)
	}
	next, err := NormalizeSections(data)
	if err != nil {
		return ReplaceResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.replace(ctx, resumeID, next, title, metaCode, ChangeTypeEdit)
}

// Ingest upserts a resume by classifier code. An existing resume gets
// Replace semantics with an upload change type; a missing one is created at
// version 1.
func (s *Service) Ingest(ctx context.Context, metaCode string, data map[string]any, title *string) (IngestResult, error) {
	metaCode = strings.TrimSpace(metaCode)
	if metaCode == "" {
		return IngestResult{}, fmt.Errorf("%w: metaCode is required", ErrInvalidInput)
	}
	if data == nil {
		return IngestResult{}, fmt.Errorf("%w: data is required", ErrInvalidInput)
	}
	next, err := NormalizeSections(data)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := s.Repo.GetByMetaCode(ctx, metaCode)
	if err == nil {
		res, err := s.replace(ctx, existing.ID, next, title, nil, ChangeTypeUpload)
		if err != nil {
			return IngestResult{}, err
		}
		version := res.NewVersion
		if !res.Applied {
			version = existing.CurrentVersion
		}
		return IngestResult{ResumeID: existing.ID, VersionNumber: version, Created: false}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return IngestResult{}, err
	}

	now := time.Now().UTC()
	resume := Resume{
		ID:             uuid.NewString(),
		MetaCode:       metaCode,
		Data:           next,
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if title != nil {
		resume.Title = *title
	}
	changed := DiffSections(nil, next)
	version := ResumeVersion{
		ResumeID:        resume.ID,
		VersionNumber:   1,
		Data:            next,
		ChangedSections: changed,
		ChangeSummary:   ChangeSummary(changed),
		ChangeType:      ChangeTypeUpload,
		CreatedAt:       now,
	}
	if err := s.Repo.CreateWithFirstVersion(ctx, resume, version); err != nil {
		return IngestResult{}, err
	}
	metrics.IncVersionCreated()
	telemetry.Info("resume.created", map[string]any{
		"resume_id": resume.ID,
		"meta_code": metaCode,
		"sections":  len(next),
	})
	return IngestResult{ResumeID: resume.ID, VersionNumber: 1, Created: true}, nil
}

// PartialUpdate merges named sections into the current data by whole-section
// replacement. It deliberately creates no version: callers that need history
// must use Replace. The write is still CAS-guarded so it cannot trample a
// concurrent Replace.
func (s *Service) PartialUpdate(ctx context.Context, resumeID string, sections map[string]any) error {
	if strings.TrimSpace(resumeID) == "" {
		return ErrInvalidInput
	}
	if len(sections) == 0 {
		return fmt.Errorf("%w: at least one section is required", ErrInvalidInput)
	}
	patch, err := NormalizeSections(sections)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, err := s.Repo.Get(ctx, resumeID)
		if err != nil {
			return err
		}
		for name := range patch {
			if _, ok := knownSections[name]; ok {
				continue
			}
			if _, ok := current.Data[name]; ok {
				continue
			}
			return fmt.Errorf("%w: unrecognized section %q", ErrInvalidInput, name)
		}

		merged := cloneSections(current.Data)
		if merged == nil {
			merged = SectionMap{}
		}
		for name, value := range patch {
			merged[name] = value
		}

		err = s.Repo.UpdateDataCAS(ctx, resumeID, current.CurrentVersion, merged)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
		lastErr = err
		metrics.IncVersionConflictRetried()
	}
	metrics.IncVersionConflictExhausted()
	return lastErr
}

// ListVersions returns version summaries newest-first.
func (s *Service) ListVersions(ctx context.Context, resumeID string) ([]VersionSummary, error) {
	if strings.TrimSpace(resumeID) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.Repo.Get(ctx, resumeID); err != nil {
		return nil, err
	}
	return s.Repo.ListVersions(ctx, resumeID)
}

// replace runs the read-diff-append cycle with bounded retries. Each retry
// re-reads current state and re-diffs against it, so a lost race converges
// on the freshest baseline.
func (s *Service) replace(ctx context.Context, resumeID string, next SectionMap, title, metaCode *string, changeType string) (ReplaceResult, error) {
	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, err := s.Repo.Get(ctx, resumeID)
		if err != nil {
			return ReplaceResult{}, err
		}

		changed := DiffSections(current.Data, next)
		if len(changed) == 0 {
			if err := s.Repo.UpdateMeta(ctx, resumeID, title, metaCode); err != nil {
				return ReplaceResult{}, err
			}
			return ReplaceResult{Applied: false, NewVersion: current.CurrentVersion}, nil
		}

		version := ResumeVersion{
			ResumeID:        resumeID,
			VersionNumber:   current.CurrentVersion + 1,
			Data:            next,
			ChangedSections: changed,
			ChangeSummary:   ChangeSummary(changed),
			ChangeType:      changeType,
			CreatedAt:       time.Now().UTC(),
		}
		err = s.Repo.AppendVersionAndAdvance(ctx, resumeID, current.CurrentVersion, version, title, metaCode)
		if err == nil {
			metrics.IncVersionCreated()
			metrics.ObserveReplaceDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
			telemetry.Info("resume.version.created", map[string]any{
				"resume_id":   resumeID,
				"version":     version.VersionNumber,
				"change_type": changeType,
				"changed":     changed,
				"attempt":     attempt,
			})
			return ReplaceResult{Applied: true, NewVersion: version.VersionNumber}, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return ReplaceResult{}, err
		}
		lastErr = err
		metrics.IncVersionConflictRetried()
	}
	metrics.IncVersionConflictExhausted()
	telemetry.Error("resume.version.conflict", map[string]any{
		"resume_id": resumeID,
		"attempts":  maxWriteAttempts,
	})
	return ReplaceResult{}, lastErr
}
