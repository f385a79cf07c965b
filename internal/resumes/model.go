package resumes

import "time"

// SectionMap maps a top-level section name (e.g. "basics", "work") to its
// JSON-decoded content. Values only ever hold the types produced by
// encoding/json: nil, bool, float64, string, []any, map[string]any.
type SectionMap map[string]any

// ChangeType records why a version exists.
const (
	ChangeTypeEdit     = "edit"
	ChangeTypeUpload   = "upload"
	ChangeTypeRollback = "rollback"
)

// Resume is the mutable aggregate root. Data always mirrors the snapshot
// stored in the version numbered CurrentVersion.
type Resume struct {
	ID             string
	Title          string
	MetaCode       string
	Data           SectionMap
	CurrentVersion int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ResumeVersion is an immutable snapshot of a resume. It is created exactly
// once and never mutated; (ResumeID, VersionNumber) is the primary key.
type ResumeVersion struct {
	ResumeID        string
	VersionNumber   int
	Data            SectionMap
	ChangedSections []string
	ChangeSummary   string
	ChangeType      string
	CreatedAt       time.Time
}

// VersionSummary is the list projection of a version. Data is deliberately
// excluded so version listings stay small; callers fetch full snapshots
// per-version.
type VersionSummary struct {
	VersionNumber   int
	ChangedSections []string
	ChangeSummary   string
	ChangeType      string
	CreatedAt       time.Time
}

// Summary returns the list projection of a version.
func (v ResumeVersion) Summary() VersionSummary {
	return VersionSummary{
		VersionNumber:   v.VersionNumber,
		ChangedSections: v.ChangedSections,
		ChangeSummary:   v.ChangeSummary,
		ChangeType:      v.ChangeType,
		CreatedAt:       v.CreatedAt,
	}
}
