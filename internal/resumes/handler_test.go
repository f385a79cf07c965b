package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	handler := NewHandler(svc, &RollbackCoordinator{Repo: repo}, &SnapshotResolver{Repo: repo})

	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
}

func TestHandlerIngestReplaceRollbackFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes/ingest", map[string]any{
		"metaCode": "SWE",
		"data":     map[string]any{"basics": map[string]any{"name": "A"}},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("ingest: expected 201, got %d body=%s", resp.Code, resp.Body.String())
	}
	var ingested struct {
		ResumeID      string `json:"resumeId"`
		VersionNumber int    `json:"versionNumber"`
		Created       bool   `json:"created"`
	}
	decodeJSON(t, resp, &ingested)
	if !ingested.Created || ingested.VersionNumber != 1 || ingested.ResumeID == "" {
		t.Fatalf("unexpected ingest response: %+v", ingested)
	}

	// Re-ingesting the same classifier upserts onto the same resume.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/resumes/ingest", map[string]any{
		"metaCode": "SWE",
		"data": map[string]any{
			"basics": map[string]any{"name": "B"},
			"skills": []any{"go"},
		},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("re-ingest: expected 200, got %d body=%s", resp.Code, resp.Body.String())
	}
	var upserted struct {
		ResumeID      string `json:"resumeId"`
		VersionNumber int    `json:"versionNumber"`
		Created       bool   `json:"created"`
	}
	decodeJSON(t, resp, &upserted)
	if upserted.Created || upserted.ResumeID != ingested.ResumeID || upserted.VersionNumber != 2 {
		t.Fatalf("unexpected upsert response: %+v", upserted)
	}

	resumePath := "/api/v1/resumes/" + ingested.ResumeID

	resp = doJSON(t, router, http.MethodPut, resumePath, map[string]any{
		"data": map[string]any{
			"basics": map[string]any{"name": "B"},
			"skills": []any{"go", "sql"},
		},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("replace: expected 200, got %d body=%s", resp.Code, resp.Body.String())
	}
	var replaced struct {
		Applied    bool `json:"applied"`
		NewVersion int  `json:"newVersion"`
	}
	decodeJSON(t, resp, &replaced)
	if !replaced.Applied || replaced.NewVersion != 3 {
		t.Fatalf("unexpected replace response: %+v", replaced)
	}

	resp = doJSON(t, router, http.MethodGet, resumePath+"/versions", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list versions: expected 200, got %d", resp.Code)
	}
	var summaries []versionSummaryResponse
	decodeJSON(t, resp, &summaries)
	if len(summaries) != 3 || summaries[0].VersionNumber != 3 {
		t.Fatalf("expected 3 versions newest-first, got %+v", summaries)
	}
	if summaries[0].Summary != "Updated skills" {
		t.Fatalf("expected latest summary %q, got %q", "Updated skills", summaries[0].Summary)
	}

	resp = doJSON(t, router, http.MethodGet, fmt.Sprintf("%s/versions/1/snapshot", resumePath), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("snapshot: expected 200, got %d", resp.Code)
	}
	var snapshot map[string]any
	decodeJSON(t, resp, &snapshot)
	basics, ok := snapshot["basics"].(map[string]any)
	if !ok || basics["name"] != "A" {
		t.Fatalf("expected v1 snapshot data, got %v", snapshot)
	}

	resp = doJSON(t, router, http.MethodPost, resumePath+"/rollback", map[string]any{"targetVersion": 1})
	if resp.Code != http.StatusOK {
		t.Fatalf("rollback: expected 200, got %d body=%s", resp.Code, resp.Body.String())
	}
	var rolled struct {
		NewVersion int `json:"newVersion"`
	}
	decodeJSON(t, resp, &rolled)
	if rolled.NewVersion != 4 {
		t.Fatalf("expected rollback to v4, got %d", rolled.NewVersion)
	}

	resp = doJSON(t, router, http.MethodGet, resumePath, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.Code)
	}
	var current resumeResponse
	decodeJSON(t, resp, &current)
	if current.CurrentVersion != 4 {
		t.Fatalf("expected current version 4, got %d", current.CurrentVersion)
	}
	currentBasics, ok := current.Data["basics"].(map[string]any)
	if !ok || currentBasics["name"] != "A" {
		t.Fatalf("expected rolled-back data, got %v", current.Data)
	}
}

func TestHandlerPartialUpdate(t *testing.T) {
	router, repo := newTestRouter(t)
	svc := &Service{Repo: repo}
	created := mustIngest(t, svc, "SWE", map[string]any{
		"basics": map[string]any{"name": "A"},
		"skills": []any{"go"},
	})

	resp := doJSON(t, router, http.MethodPatch, "/api/v1/resumes/"+created.ResumeID+"/sections", map[string]any{
		"sections": map[string]any{"skills": []any{"go", "sql"}},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/resumes/"+created.ResumeID, nil)
	var current resumeResponse
	decodeJSON(t, resp, &current)
	if current.CurrentVersion != 1 {
		t.Fatalf("partial update must not advance the version, got %d", current.CurrentVersion)
	}

	resp = doJSON(t, router, http.MethodPatch, "/api/v1/resumes/"+created.ResumeID+"/sections", map[string]any{
		"sections": map[string]any{},
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty sections, got %d", resp.Code)
	}
}

func TestHandlerErrorMapping(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/resumes/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var errBody struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &errBody)
	if errBody.Error.Code != "not_found" {
		t.Fatalf("expected not_found code, got %q", errBody.Error.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/resumes/ingest", map[string]any{
		"metaCode": "",
		"data":     map[string]any{"basics": map[string]any{}},
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing classifier, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/resumes/missing/versions/abc/snapshot", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric version, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/resumes/missing/rollback", map[string]any{"targetVersion": 0})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-positive target, got %d", resp.Code)
	}
}

func TestHandlerVersionConflictMapsTo409(t *testing.T) {
	gin.SetMode(gin.TestMode)

	inner := NewMemoryRepo()
	setupSvc := &Service{Repo: inner}
	created, err := setupSvc.Ingest(context.Background(), "SWE", map[string]any{"skills": []any{"go"}}, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	repo := &conflictRepo{MemoryRepo: inner}
	svc := &Service{Repo: repo}
	handler := NewHandler(svc, &RollbackCoordinator{Repo: repo}, &SnapshotResolver{Repo: repo})
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))

	resp := doJSON(t, router, http.MethodPut, "/api/v1/resumes/"+created.ResumeID, map[string]any{
		"data": map[string]any{"skills": []any{"rust"}},
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", resp.Code, resp.Body.String())
	}
	var errBody struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &errBody)
	if errBody.Error.Code != "version_conflict" {
		t.Fatalf("expected version_conflict code, got %q", errBody.Error.Code)
	}
}
