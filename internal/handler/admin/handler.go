package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opdesk/opdesk/internal/backend"
	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/pkg/httputil"
	"github.com/opdesk/opdesk/pkg/validator"
)

// Handler fronts the admin desk screens: doctor records and staff
// approval. Doctor forms get the staff-variant rules (age 18+, email)
// checked here before the backend sees them.
type Handler struct {
	api *backend.AdminClient
	v   validator.Validator
}

func NewHandler(api *backend.AdminClient) *Handler {
	return &Handler{api: api, v: validator.New()}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/doctors", h.ListDoctors)
		admin.POST("/doctors", h.AddDoctor)
		admin.PATCH("/doctors/:id/status", h.SetDoctorStatus)
		admin.GET("/staff/:role", h.ListStaff)
		admin.PATCH("/staff/:role/:id/approve", h.ApproveStaff)
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.api.ListDoctors(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) AddDoctor(c *gin.Context) {
	var form model.DoctorForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if fields := h.v.Validate(form); fields != nil {
		httputil.RespondWithValidation(c, fields)
		return
	}

	doctor, err := h.api.AddDoctor(c.Request.Context(), form)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, doctor)
}

type statusRequest struct {
	Active bool `json:"status"`
}

func (h *Handler) SetDoctorStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.api.SetDoctorStatus(c.Request.Context(), c.Param("id"), req.Active); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"updated": true})
}

func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.api.ListStaff(c.Request.Context(), c.Param("role"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, staff)
}

func (h *Handler) ApproveStaff(c *gin.Context) {
	if err := h.api.ApproveStaff(c.Request.Context(), c.Param("role"), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"approved": true})
}
