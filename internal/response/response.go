package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/wisha-api/internal/auth"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/session"
	"github.com/gravadigital/wisha-api/internal/validation"
)

// GenericFailure is the notice shown for unexpected errors
const GenericFailure = "Something went wrong, please try again"

const outcomeKey = "wisha_outcome"

// Response representa la estructura estándar de respuesta de la API
type Response struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Data     interface{}      `json:"data,omitempty"`
	Redirect string           `json:"redirect,omitempty"`
	Notices  []session.Notice `json:"notices,omitempty"`
}

// ErrorResponse representa una respuesta de error
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    int               `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
	Notices []session.Notice  `json:"notices,omitempty"`
}

// SetOutcome attaches the per-request redirect and notice collector
func SetOutcome(c *gin.Context, out *session.Outcome) {
	c.Set(outcomeKey, out)
}

// OutcomeFrom returns the collector of the request, creating one if needed
func OutcomeFrom(c *gin.Context) *session.Outcome {
	if v, ok := c.Get(outcomeKey); ok {
		if out, ok := v.(*session.Outcome); ok {
			return out
		}
	}
	out := session.NewOutcome()
	SetOutcome(c, out)
	return out
}

// SuccessResponse envía una respuesta exitosa
func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	out := OutcomeFrom(c)
	c.JSON(status, Response{
		Success:  true,
		Message:  message,
		Data:     data,
		Redirect: out.Redirect(),
		Notices:  out.Notices(),
	})
}

// ErrorResponseWithMessage envía una respuesta de error con mensaje personalizado
func ErrorResponseWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    status,
		Notices: OutcomeFrom(c).Notices(),
	})
}

// ValidationError envía un 400 con el mensaje de cada campo
func ValidationError(c *gin.Context, errs validation.Errors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   errs.Error(),
		Code:    http.StatusBadRequest,
		Fields:  errs,
		Notices: OutcomeFrom(c).Notices(),
	})
}

// BadRequestError envía un error 400
func BadRequestError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusBadRequest, message)
}

// NotFoundError envía un error 404
func NotFoundError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusNotFound, message)
}

// InternalServerError envía un error 500
func InternalServerError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusInternalServerError, message)
}

// UnauthorizedError envía un error 401
func UnauthorizedError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusUnauthorized, message)
}

// ForbiddenError envía un error 403
func ForbiddenError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusForbidden, message)
}

// ConflictError envía un error 409
func ConflictError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusConflict, message)
}

// FromError maps service and domain errors onto a status code and a notice.
// Anything unrecognised is logged and reported as a generic 500.
func FromError(c *gin.Context, err error) {
	if errs, ok := validation.AsErrors(err); ok {
		ValidationError(c, errs)
		return
	}

	status, message := classify(err)
	if status == http.StatusInternalServerError {
		logger.HTTP().Error("unhandled error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}

	out := OutcomeFrom(c)
	if !hasErrorNotice(out) {
		out.Notify(session.Notice{Kind: session.NoticeError, Title: message})
	}
	ErrorResponseWithMessage(c, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "Please log in to continue"
	case errors.Is(err, common.ErrSessionExpired):
		return http.StatusUnauthorized, "Your session has expired, please log in again"
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrProfileMissing):
		return http.StatusNotFound, "We could not find your profile"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrEmailTaken):
		return http.StatusConflict, "This email is already registered"
	case errors.Is(err, common.ErrNotClaimable):
		return http.StatusConflict, "This item is no longer available"
	}
	return http.StatusInternalServerError, GenericFailure
}

func hasErrorNotice(out *session.Outcome) bool {
	for _, n := range out.Notices() {
		if n.Kind == session.NoticeError {
			return true
		}
	}
	return false
}
