package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/opdesk/opdesk/internal/backend"
	"github.com/opdesk/opdesk/pkg/httputil"
)

// Handler passes patient lookup and visit history through to the
// backend. The existing-patient appointment flow reads these before
// opening its form.
type Handler struct {
	api *backend.ReceptionistClient
}

func NewHandler(api *backend.ReceptionistClient) *Handler {
	return &Handler{api: api}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("/:id", h.GetPatient)
		patients.GET("/history/:opNumber", h.GetHistory)
	}
}

func (h *Handler) GetPatient(c *gin.Context) {
	patient, err := h.api.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) GetHistory(c *gin.Context) {
	records, err := h.api.PatientHistory(c.Request.Context(), c.Param("opNumber"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}
