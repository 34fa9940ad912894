package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradeworks/evaluation-service/internal/identity"
	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/utils"
)

// ErrorResponse is the error payload shape for all endpoints.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse wraps success payloads.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logger shared by all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string) {
	h.logger.LogError(err, message,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"))
}

// requireUser fetches the authenticated actor or aborts with 401.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := identity.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return nil, false
	}
	return user, true
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "evaluation-service"})
}
