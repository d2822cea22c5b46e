package handlers

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/wisha-api/internal/auth"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/middleware"
	"github.com/gravadigital/wisha-api/internal/response"
	"github.com/gravadigital/wisha-api/internal/session"
	"github.com/gravadigital/wisha-api/internal/validation"
)

type AuthHandler struct {
	log *log.Logger
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{log: logger.Handler("auth")}
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=80"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is what the client keeps after signing in
type SessionResponse struct {
	State   session.State `json:"state"`
	User    *user.User    `json:"user,omitempty"`
	Session *auth.Session `json:"session,omitempty"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	sess := middleware.SessionFrom(c)
	u, err := sess.Signup(c.Request.Context(), req.Email, req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.log.Info("signup completed", "user_id", u.ID)
	notify(c, session.NoticeSuccess, "Welcome to Wisha", u.Name)
	response.SuccessResponse(c, http.StatusCreated, "Account created", SessionResponse{
		State:   sess.State(),
		User:    u,
		Session: sess.Session(),
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	sess := middleware.SessionFrom(c)
	u, err := sess.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}

	notify(c, session.NoticeSuccess, "Welcome back", u.Name)
	response.SuccessResponse(c, http.StatusOK, "Logged in", SessionResponse{
		State:   sess.State(),
		User:    u,
		Session: sess.Session(),
	})
}

// Logout handles POST /api/auth/logout. It always answers 200; a failed
// revoke only shows up as a notice.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	sess.Logout(c.Request.Context())
	response.SuccessResponse(c, http.StatusOK, "", SessionResponse{State: sess.State()})
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	body := SessionResponse{State: sess.State(), User: sess.CurrentUser()}
	if s := sess.Session(); s != nil {
		body.Session = &auth.Session{UserID: s.UserID, Email: s.Email, ExpiresAt: s.ExpiresAt}
	}
	response.SuccessResponse(c, http.StatusOK, "", body)
}

// Exists handles GET /api/auth/exists?email=
func (h *AuthHandler) Exists(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if err := validation.ValidateEmail(email); err != nil {
		response.SuccessResponse(c, http.StatusOK, "", gin.H{"exists": false})
		return
	}

	exists := middleware.SessionFrom(c).CheckUserExists(c.Request.Context(), email)
	response.SuccessResponse(c, http.StatusOK, "", gin.H{"exists": exists})
}
