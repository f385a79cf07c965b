package resumes

import (
	"context"
	"errors"
	"strings"
)

// SnapshotResolver is the read-only accessor the generation worker uses to
// obtain the exact data for a (resume, version) pair. The worker never reads
// the live resume row directly.
type SnapshotResolver struct {
	Repo Repo
}

// Resolve returns the section map stored for the given version. The version
// row is the source of truth; if it is unavailable but the requested number
// equals the resume's current version, the resume's own data is returned
// instead. Those two are identical by invariant, so the fallback is
// redundancy, not a second source.
func (r *SnapshotResolver) Resolve(ctx context.Context, resumeID string, versionNumber int) (SectionMap, error) {
	if strings.TrimSpace(resumeID) == "" || versionNumber < 1 {
		return nil, ErrInvalidInput
	}

	version, err := r.Repo.GetVersion(ctx, resumeID, versionNumber)
	if err == nil {
		return version.Data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	resume, err := r.Repo.Get(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	if resume.CurrentVersion != versionNumber {
		return nil, ErrNotFound
	}
	return resume.Data, nil
}
