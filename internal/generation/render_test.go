package generation

import (
	"bytes"
	"strings"
	"testing"

	"resume-vault/internal/resumes"
)

func TestRenderArtifactDeterministic(t *testing.T) {
	data := resumes.SectionMap{
		"work":   []any{map[string]any{"company": "Acme", "role": "Engineer"}},
		"basics": map[string]any{"name": "A", "email": "a@example.com"},
		"skills": []any{"go", "sql"},
	}

	first, err := RenderArtifact("resume-1", 2, data)
	if err != nil {
		t.Fatalf("RenderArtifact: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := RenderArtifact("resume-1", 2, data)
		if err != nil {
			t.Fatalf("RenderArtifact iteration %d: %v", i, err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("expected identical bytes on iteration %d", i)
		}
	}

	text := string(first)
	if !strings.HasPrefix(text, "resume resume-1 version 2\n") {
		t.Fatalf("unexpected header: %q", text)
	}
	basicsAt := strings.Index(text, "[basics]")
	skillsAt := strings.Index(text, "[skills]")
	workAt := strings.Index(text, "[work]")
	if basicsAt < 0 || skillsAt < 0 || workAt < 0 {
		t.Fatalf("missing section headers: %q", text)
	}
	if !(basicsAt < skillsAt && skillsAt < workAt) {
		t.Fatalf("sections out of order: %q", text)
	}
}

func TestArtifactFileName(t *testing.T) {
	if got := ArtifactFileName(3); got != "resume_v3.txt" {
		t.Fatalf("unexpected file name %q", got)
	}
}
