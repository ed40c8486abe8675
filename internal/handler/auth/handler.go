package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opdesk/opdesk/internal/backend"
	"github.com/opdesk/opdesk/pkg/httputil"
)

// Handler establishes and tears down the desk session. Login pushes the
// backend-issued token into the session shared by all role clients;
// logout invalidates it.
type Handler struct {
	auth    *backend.AuthClient
	session *backend.Session
}

func NewHandler(auth *backend.AuthClient, session *backend.Session) *Handler {
	return &Handler{auth: auth, session: session}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/session", h.SessionStatus)
	}
}

type loginRequest struct {
	Role     string `json:"role" binding:"required,oneof=receptionist admin scanner"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.auth.Login(c.Request.Context(), req.Role, backend.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"active": true})
}

func (h *Handler) Logout(c *gin.Context) {
	h.auth.Logout()
	httputil.RespondWithSuccess(c, gin.H{"active": false})
}

func (h *Handler) SessionStatus(c *gin.Context) {
	httputil.RespondWithSuccess(c, gin.H{"active": h.session.Active()})
}
