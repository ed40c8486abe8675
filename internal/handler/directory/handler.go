package directory

import (
	"github.com/gin-gonic/gin"

	"github.com/opdesk/opdesk/internal/directory"
	"github.com/opdesk/opdesk/pkg/httputil"
)

type Handler struct {
	service *directory.Service
}

func NewHandler(service *directory.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.POST("/refresh", h.Refresh)
	}
}

// ListDoctors serves the cached directory; no backend round trip.
func (h *Handler) ListDoctors(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.service.Doctors())
}

// Refresh reloads the directory from the backend. On failure the cached
// mapping survives and the error is surfaced as a warning condition.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.service.Load(c.Request.Context()); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.service.Doctors())
}
