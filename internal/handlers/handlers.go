package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/middleware"
	"github.com/gravadigital/wisha-api/internal/response"
	"github.com/gravadigital/wisha-api/internal/session"
	"github.com/gravadigital/wisha-api/internal/validation"
)

var (
	errUpdateFailed = errors.New("update failed")
	errDeleteFailed = errors.New("delete failed")
)

// pathID parses a uuid path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := validation.ValidateUUID(c.Param(param), param)
	if err != nil {
		response.BadRequestError(c, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body and runs the validate tags of v
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return false
	}
	if err := validation.Struct(v); err != nil {
		response.FromError(c, err)
		return false
	}
	return true
}

func currentUser(c *gin.Context) *user.User {
	if sess := middleware.SessionFrom(c); sess != nil {
		return sess.CurrentUser()
	}
	return nil
}

func notify(c *gin.Context, kind session.NoticeKind, title, message string) {
	response.OutcomeFrom(c).Notify(session.Notice{Kind: kind, Title: title, Message: message})
}
