package resumes

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestResolvePrefersVersionRow(t *testing.T) {
	svc, repo := newTestService(t)
	resolver := &SnapshotResolver{Repo: repo}

	created := mustIngest(t, svc, "SWE", map[string]any{"basics": map[string]any{"name": "A"}})
	if _, err := svc.Replace(context.Background(), created.ResumeID, map[string]any{"basics": map[string]any{"name": "B"}}, nil, nil); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	data, err := resolver.Resolve(context.Background(), created.ResumeID, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := SectionMap{"basics": map[string]any{"name": "A"}}
	if !reflect.DeepEqual(data, want) {
		t.Fatalf("expected v1 snapshot %v, got %v", want, data)
	}
}

func TestResolveFallsBackToCurrentData(t *testing.T) {
	repo := NewMemoryRepo()
	resolver := &SnapshotResolver{Repo: repo}

	// Seed a resume whose current version row is missing from the log, which
	// the resolver tolerates only because the live data mirrors it.
	now := time.Now().UTC()
	resume := Resume{
		ID:             "resume-1",
		MetaCode:       "SWE",
		Data:           SectionMap{"basics": map[string]any{"name": "A"}},
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	firstVersion := ResumeVersion{
		ResumeID:        resume.ID,
		VersionNumber:   1,
		Data:            resume.Data,
		ChangedSections: []string{"basics"},
		ChangeSummary:   "Updated basics",
		ChangeType:      ChangeTypeUpload,
		CreatedAt:       now,
	}
	if err := repo.CreateWithFirstVersion(context.Background(), resume, firstVersion); err != nil {
		t.Fatalf("CreateWithFirstVersion: %v", err)
	}

	fallback := &SnapshotResolver{Repo: missingVersionRepo{repo}}
	data, err := fallback.Resolve(context.Background(), resume.ID, 1)
	if err != nil {
		t.Fatalf("Resolve with missing version row: %v", err)
	}
	if !reflect.DeepEqual(data, resume.Data) {
		t.Fatalf("expected fallback to live data, got %v", data)
	}

	if _, err := fallback.Resolve(context.Background(), resume.ID, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-current missing version, got %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), "nope", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown resume, got %v", err)
	}
}

// missingVersionRepo simulates a version log that lost its rows.
type missingVersionRepo struct {
	Repo
}

func (r missingVersionRepo) GetVersion(ctx context.Context, resumeID string, versionNumber int) (ResumeVersion, error) {
	return ResumeVersion{}, ErrNotFound
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	resolver := &SnapshotResolver{Repo: NewMemoryRepo()}
	if _, err := resolver.Resolve(context.Background(), "", 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), "resume-1", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
