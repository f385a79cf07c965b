package generation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-vault/internal/shared/server/middleware"
	"resume-vault/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the generation service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/versions/:version/generate", h.create)
	rg.GET("/generations/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	versionNumber, err := strconv.Atoi(c.Param("version"))
	if err != nil || versionNumber < 1 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "version must be a positive integer", nil)
		return
	}

	job, err := h.Svc.CreateJob(c.Request.Context(), c.Param("id"), versionNumber, middleware.RequestIDFromContext(c))
	if err != nil {
		h.writeError(c, err, "failed to create generation job")
		return
	}

	c.Set("generationJobId", job.ID)
	respond.JSON(c, http.StatusAccepted, toJobResponse(job))
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to fetch generation job")
		return
	}
	respond.JSON(c, http.StatusOK, toJobResponse(job))
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume, version, or job not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

type jobResponse struct {
	JobID         string     `json:"jobId"`
	ResumeID      string     `json:"resumeId"`
	VersionNumber int        `json:"versionNumber"`
	Status        string     `json:"status"`
	StorageKey    string     `json:"storageKey,omitempty"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

func toJobResponse(job Job) jobResponse {
	return jobResponse{
		JobID:         job.ID,
		ResumeID:      job.ResumeID,
		VersionNumber: job.VersionNumber,
		Status:        job.Status,
		StorageKey:    job.StorageKey,
		Error:         job.ErrorMessage,
		CreatedAt:     job.CreatedAt,
		CompletedAt:   job.CompletedAt,
	}
}
