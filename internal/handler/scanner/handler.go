package scanner

import (
	"github.com/gin-gonic/gin"

	"github.com/opdesk/opdesk/internal/backend"
	"github.com/opdesk/opdesk/pkg/httputil"
)

// Handler passes scanner-station queries through to the backend. New
// registrations also reach stations over the patient.registered channel.
type Handler struct {
	api *backend.ScannerClient
}

func NewHandler(api *backend.ScannerClient) *Handler {
	return &Handler{api: api}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	scanner := r.Group("/scanner")
	{
		scanner.GET("/pending", h.PendingPatients)
		scanner.GET("/patients", h.AllPatients)
		scanner.GET("/search", h.Search)
	}
}

func (h *Handler) PendingPatients(c *gin.Context) {
	patients, err := h.api.PendingPatients(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) AllPatients(c *gin.Context) {
	patients, err := h.api.AllPatients(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) Search(c *gin.Context) {
	patients, err := h.api.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}
