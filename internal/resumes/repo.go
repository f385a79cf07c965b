package resumes

import "context"

// Repo defines persistence operations for resumes and their version log.
//
// AppendVersionAndAdvance is the single write path for new versions: the
// version insert and the current-pointer advance must commit or fail as one
// unit, conditional on the resume still being at expectedVersion. A lost
// race surfaces as ErrVersionConflict.
type Repo interface {
	// CreateWithFirstVersion inserts a new resume at CurrentVersion 1
	// together with its first version row.
	CreateWithFirstVersion(ctx context.Context, resume Resume, version ResumeVersion) error

	Get(ctx context.Context, resumeID string) (Resume, error)
	GetByMetaCode(ctx context.Context, metaCode string) (Resume, error)

	// AppendVersionAndAdvance appends version (numbered expectedVersion+1)
	// and advances the resume's data and current pointer, atomically,
	// conditional on the stored current_version still equal to
	// expectedVersion. Optional title/metaCode updates ride in the same
	// transaction.
	AppendVersionAndAdvance(ctx context.Context, resumeID string, expectedVersion int, version ResumeVersion, title, metaCode *string) error

	// UpdateMeta updates only cosmetic fields; no version side effects.
	UpdateMeta(ctx context.Context, resumeID string, title, metaCode *string) error

	// UpdateDataCAS replaces the resume's data without touching the version
	// log, conditional on current_version still equal to expectedVersion.
	UpdateDataCAS(ctx context.Context, resumeID string, expectedVersion int, data SectionMap) error

	GetVersion(ctx context.Context, resumeID string, versionNumber int) (ResumeVersion, error)
	ListVersions(ctx context.Context, resumeID string) ([]VersionSummary, error)
}
