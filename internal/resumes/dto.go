package resumes

import "time"

type replaceRequest struct {
	Data     map[string]any `json:"data"`
	Title    *string        `json:"title"`
	MetaCode *string        `json:"metaCode"`
}

type replaceResponse struct {
	Applied    bool `json:"applied"`
	NewVersion int  `json:"newVersion,omitempty"`
}

type partialUpdateRequest struct {
	Sections map[string]any `json:"sections"`
}

type ingestRequest struct {
	MetaCode string         `json:"metaCode"`
	Data     map[string]any `json:"data"`
	Title    *string        `json:"title"`
}

type ingestResponse struct {
	ResumeID      string `json:"resumeId"`
	VersionNumber int    `json:"versionNumber"`
	Created       bool   `json:"created"`
}

type rollbackRequest struct {
	TargetVersion int `json:"targetVersion"`
}

type resumeResponse struct {
	ResumeID       string         `json:"resumeId"`
	Title          string         `json:"title"`
	MetaCode       string         `json:"metaCode"`
	Data           map[string]any `json:"data"`
	CurrentVersion int            `json:"currentVersion"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type versionSummaryResponse struct {
	VersionNumber   int       `json:"versionNumber"`
	ChangedSections []string  `json:"changedSections"`
	Summary         string    `json:"summary"`
	ChangeType      string    `json:"changeType"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toResumeResponse(res Resume) resumeResponse {
	return resumeResponse{
		ResumeID:       res.ID,
		Title:          res.Title,
		MetaCode:       res.MetaCode,
		Data:           res.Data,
		CurrentVersion: res.CurrentVersion,
		UpdatedAt:      res.UpdatedAt,
	}
}

func toVersionSummaryResponse(s VersionSummary) versionSummaryResponse {
	changed := s.ChangedSections
	if changed == nil {
		changed = []string{}
	}
	return versionSummaryResponse{
		VersionNumber:   s.VersionNumber,
		ChangedSections: changed,
		Summary:         s.ChangeSummary,
		ChangeType:      s.ChangeType,
		CreatedAt:       s.CreatedAt,
	}
}
