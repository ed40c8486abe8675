package registration

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opdesk/opdesk/internal/directory"
	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/internal/registration"
	"github.com/opdesk/opdesk/pkg/httputil"
)

// Handler exposes the registration workflow to desk terminals: open a
// form session, stream edits through the reducer, submit.
type Handler struct {
	service   *registration.Service
	directory *directory.Service
}

func NewHandler(service *registration.Service, dir *directory.Service) *Handler {
	return &Handler{service: service, directory: dir}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/registrations/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/events", h.ApplyEvent)
		sessions.POST("/:id/submit", h.Submit)
		sessions.DELETE("/:id", h.CloseSession)
	}
}

type createSessionRequest struct {
	ExistingPatientID string `json:"existingPatientId"`
}

type sessionResponse struct {
	SessionID string         `json:"session_id"`
	Variant   string         `json:"variant"`
	Draft     interface{}    `json:"draft"`
	Doctors   []model.Doctor `json:"doctors"`
	Warning   string         `json:"warning,omitempty"`
}

// CreateSession opens a form and loads the doctor directory for it. A
// directory load failure degrades to an empty doctor list with a
// warning; the form stays usable.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var sess *registration.Session
	if req.ExistingPatientID != "" {
		sess = h.service.NewAppointmentSession(req.ExistingPatientID)
	} else {
		sess = h.service.NewSession()
	}

	warning := ""
	if err := h.directory.Load(c.Request.Context()); err != nil {
		warning = "failed to load doctors; selection is unavailable"
	}

	httputil.RespondWithCreated(c, h.sessionResponse(sess, warning))
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.lookupSession(c)
	if err != nil {
		return
	}
	httputil.RespondWithSuccess(c, h.sessionResponse(sess, ""))
}

type eventRequest struct {
	Type     string `json:"type" binding:"required,oneof=set_field select_doctor"`
	Name     string `json:"name"`
	Value    string `json:"value"`
	DoctorID string `json:"doctorId"`
}

// ApplyEvent runs one edit through the reducer and returns the updated
// draft, derived fields included.
func (h *Handler) ApplyEvent(c *gin.Context) {
	sess, err := h.lookupSession(c)
	if err != nil {
		return
	}

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ev registration.Event
	switch req.Type {
	case "select_doctor":
		ev = registration.SelectDoctor{DoctorID: req.DoctorID}
	default:
		ev = registration.SetField{Name: req.Name, Value: req.Value}
	}

	sess, err = h.service.Apply(sess.ID, ev)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.sessionResponse(sess, ""))
}

// Submit persists the draft. Field errors come back as 422 without any
// backend call; a duplicate submit while one is in flight is a 409.
func (h *Handler) Submit(c *gin.Context) {
	sess, err := h.lookupSession(c)
	if err != nil {
		return
	}

	patient, err := h.service.Submit(c.Request.Context(), sess.ID)
	if err != nil {
		if verr, ok := err.(*registration.ValidationError); ok {
			httputil.RespondWithValidation(c, verr.Fields)
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, patient)
}

func (h *Handler) CloseSession(c *gin.Context) {
	sess, err := h.lookupSession(c)
	if err != nil {
		return
	}
	h.service.CloseSession(sess.ID)
	httputil.RespondWithSuccess(c, gin.H{"closed": true})
}

func (h *Handler) lookupSession(c *gin.Context) (*registration.Session, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return nil, err
	}
	sess, err := h.service.Session(id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return nil, err
	}
	return sess, nil
}

func (h *Handler) sessionResponse(sess *registration.Session, warning string) sessionResponse {
	resp := sessionResponse{
		SessionID: sess.ID.String(),
		Variant:   string(sess.Variant),
		Doctors:   h.directory.Doctors(),
		Warning:   warning,
	}
	if sess.Variant == registration.VariantExistingPatient {
		resp.Draft = sess.AppointmentDraft()
	} else {
		resp.Draft = sess.Draft()
	}
	return resp
}
