package printing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/internal/printing"
	"github.com/opdesk/opdesk/pkg/httputil"
)

// Handler exposes the print queue for observation and manual retry.
type Handler struct {
	service *printing.Service
}

func NewHandler(service *printing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	jobs := r.Group("/print-jobs")
	{
		jobs.GET("", h.ListJobs)
		jobs.GET("/:id", h.GetJob)
		jobs.POST("/:id/requeue", h.RequeueJob)
	}
}

func (h *Handler) ListJobs(c *gin.Context) {
	status := model.PrintJobStatus(c.DefaultQuery("status", string(model.PrintJobFailed)))
	jobs, err := h.service.List(c.Request.Context(), status, 50)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, jobs)
}

func (h *Handler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job ID"})
		return
	}

	job, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, job)
}

func (h *Handler) RequeueJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job ID"})
		return
	}

	job, err := h.service.Requeue(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, job)
}
