package resumes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-vault/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the resume services.
type Handler struct {
	Svc       *Service
	Rollbacks *RollbackCoordinator
	Snapshots *SnapshotResolver
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, rollbacks *RollbackCoordinator, snapshots *SnapshotResolver) *Handler {
	return &Handler{Svc: svc, Rollbacks: rollbacks, Snapshots: snapshots}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.replace)
	rg.PATCH("/resumes/:id/sections", h.partialUpdate)
	rg.POST("/resumes/ingest", h.ingest)
	rg.POST("/resumes/:id/rollback", h.rollback)
	rg.GET("/resumes/:id/versions", h.listVersions)
	rg.GET("/resumes/:id/versions/:version/snapshot", h.snapshot)
}

func (h *Handler) get(c *gin.Context) {
	res, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to fetch resume")
		return
	}
	respond.JSON(c, http.StatusOK, toResumeResponse(res))
}

func (h *Handler) replace(c *gin.Context) {
	var req replaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Data == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "data is required", nil)
		return
	}

	result, err := h.Svc.Replace(c.Request.Context(), c.Param("id"), req.Data, req.Title, req.MetaCode)
	if err != nil {
		h.writeError(c, err, "failed to replace resume")
		return
	}

	resp := replaceResponse{Applied: result.Applied}
	if result.Applied {
		resp.NewVersion = result.NewVersion
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) partialUpdate(c *gin.Context) {
	var req partialUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.Sections) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one section is required", nil)
		return
	}

	if err := h.Svc.PartialUpdate(c.Request.Context(), c.Param("id"), req.Sections); err != nil {
		h.writeError(c, err, "failed to update sections")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"applied": true})
}

func (h *Handler) ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.Ingest(c.Request.Context(), req.MetaCode, req.Data, req.Title)
	if err != nil {
		h.writeError(c, err, "failed to ingest resume")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respond.JSON(c, status, ingestResponse{
		ResumeID:      result.ResumeID,
		VersionNumber: result.VersionNumber,
		Created:       result.Created,
	})
}

func (h *Handler) rollback(c *gin.Context) {
	var req rollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.TargetVersion < 1 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "targetVersion must be positive", nil)
		return
	}

	newVersion, err := h.Rollbacks.Rollback(c.Request.Context(), c.Param("id"), req.TargetVersion)
	if err != nil {
		h.writeError(c, err, "failed to roll back resume")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"newVersion": newVersion})
}

func (h *Handler) listVersions(c *gin.Context) {
	summaries, err := h.Svc.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to list versions")
		return
	}

	resp := make([]versionSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, toVersionSummaryResponse(s))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) snapshot(c *gin.Context) {
	versionNumber, err := strconv.Atoi(c.Param("version"))
	if err != nil || versionNumber < 1 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "version must be a positive integer", nil)
		return
	}

	data, err := h.Snapshots.Resolve(c.Request.Context(), c.Param("id"), versionNumber)
	if err != nil {
		h.writeError(c, err, "failed to resolve snapshot")
		return
	}
	respond.JSON(c, http.StatusOK, map[string]any(data))
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume or version not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrVersionConflict):
		respond.Error(c, http.StatusConflict, "version_conflict", "concurrent update in progress, retry the operation", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
