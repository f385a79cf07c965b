package resumes

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo. It backs tests and the
// DB-less dev mode and honors the same conditional-write contract as PGRepo:
// every append is conditional on the expected current version under a single
// lock.
type MemoryRepo struct {
	mu       sync.RWMutex
	resumes  map[string]Resume
	versions map[string][]ResumeVersion // resumeID -> versions ordered 1..n
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		resumes:  make(map[string]Resume),
		versions: make(map[string][]ResumeVersion),
	}
}

// CreateWithFirstVersion inserts a new resume and its first version.
func (r *MemoryRepo) CreateWithFirstVersion(ctx context.Context, resume Resume, version ResumeVersion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resumes[resume.ID]; exists {
		return ErrVersionConflict
	}
	resume.Data = cloneSections(resume.Data)
	version.Data = cloneSections(version.Data)
	r.resumes[resume.ID] = resume
	r.versions[resume.ID] = []ResumeVersion{version}
	return nil
}

// Get returns a resume by id.
func (r *MemoryRepo) Get(ctx context.Context, resumeID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resumes[resumeID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	res.Data = cloneSections(res.Data)
	return res, nil
}

// GetByMetaCode returns the resume with the given classifier code.
func (r *MemoryRepo) GetByMetaCode(ctx context.Context, metaCode string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		found Resume
		ok    bool
	)
	for _, res := range r.resumes {
		if res.MetaCode != metaCode {
			continue
		}
		if !ok || res.CreatedAt.Before(found.CreatedAt) {
			found = res
			ok = true
		}
	}
	if !ok {
		return Resume{}, ErrNotFound
	}
	found.Data = cloneSections(found.Data)
	return found, nil
}

// AppendVersionAndAdvance appends a version and advances the current pointer
// conditional on the stored version still being expectedVersion.
func (r *MemoryRepo) AppendVersionAndAdvance(ctx context.Context, resumeID string, expectedVersion int, version ResumeVersion, title, metaCode *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resumes[resumeID]
	if !ok {
		return ErrNotFound
	}
	if res.CurrentVersion != expectedVersion {
		return ErrVersionConflict
	}
	version.Data = cloneSections(version.Data)
	res.Data = cloneSections(version.Data)
	res.CurrentVersion = version.VersionNumber
	if title != nil {
		res.Title = *title
	}
	if metaCode != nil {
		res.MetaCode = *metaCode
	}
	res.UpdatedAt = version.CreatedAt
	r.resumes[resumeID] = res
	r.versions[resumeID] = append(r.versions[resumeID], version)
	return nil
}

// UpdateMeta updates cosmetic fields only.
func (r *MemoryRepo) UpdateMeta(ctx context.Context, resumeID string, title, metaCode *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resumes[resumeID]
	if !ok {
		return ErrNotFound
	}
	if title != nil {
		res.Title = *title
	}
	if metaCode != nil {
		res.MetaCode = *metaCode
	}
	r.resumes[resumeID] = res
	return nil
}

// UpdateDataCAS replaces the resume's data without a version side effect.
func (r *MemoryRepo) UpdateDataCAS(ctx context.Context, resumeID string, expectedVersion int, data SectionMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resumes[resumeID]
	if !ok {
		return ErrNotFound
	}
	if res.CurrentVersion != expectedVersion {
		return ErrVersionConflict
	}
	res.Data = cloneSections(data)
	r.resumes[resumeID] = res
	return nil
}

// GetVersion returns one immutable snapshot.
func (r *MemoryRepo) GetVersion(ctx context.Context, resumeID string, versionNumber int) (ResumeVersion, error) {
	if err := ctx.Err(); err != nil {
		return ResumeVersion{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.versions[resumeID] {
		if v.VersionNumber == versionNumber {
			v.Data = cloneSections(v.Data)
			return v, nil
		}
	}
	return ResumeVersion{}, ErrNotFound
}

// ListVersions returns version summaries newest-first.
func (r *MemoryRepo) ListVersions(ctx context.Context, resumeID string) ([]VersionSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := r.versions[resumeID]
	out := make([]VersionSummary, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		out = append(out, versions[i].Summary())
	}
	return out, nil
}

// cloneSections deep-copies a section map through JSON so stored snapshots
// can never be mutated through a caller's reference.
func cloneSections(data SectionMap) SectionMap {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return data
	}
	var out SectionMap
	if err := json.Unmarshal(raw, &out); err != nil {
		return data
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
