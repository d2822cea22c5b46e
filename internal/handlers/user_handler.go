package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/response"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/session"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type UpdateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=80"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

// UpdateMe handles PATCH /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := user.Patch{Avatar: req.Avatar}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		patch.Name = &name
	}
	if patch.IsEmpty() {
		response.BadRequestError(c, "Nothing to update")
		return
	}

	updated := h.users.Update(c.Request.Context(), currentUser(c).ID, patch)
	if updated == nil {
		response.FromError(c, errUpdateFailed)
		return
	}

	notify(c, session.NoticeSuccess, "Profile updated", "")
	response.SuccessResponse(c, http.StatusOK, "", updated)
}
