package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/wisha-api/internal/response"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/session"
)

const sessionKey = "wisha_session"

// Session builds the session context of the request from its bearer token.
// Anonymous requests pass through with an anonymous context.
func Session(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := response.OutcomeFrom(c)
		sess := session.New(authService, out, out)
		sess.Initialize(c.Request.Context(), BearerToken(c))
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil || !sess.IsAuthenticated() {
			response.UnauthorizedError(c, "Please log in to continue")
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session context set by Session, or nil
func SessionFrom(c *gin.Context) *session.Context {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Context); ok {
			return sess
		}
	}
	return nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
