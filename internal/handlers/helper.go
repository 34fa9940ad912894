package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gradeworks/evaluation-service/internal/services"
)

// ParseStringIDParam extracts a non-empty path parameter or writes a 400.
func ParseStringIDParam(c *gin.Context, param string) string {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
	}
	return id
}

// RespondWithServiceError maps the service error taxonomy onto HTTP statuses.
// Every failed pipeline attempt surfaces exactly one terminal error; retry
// policy belongs to the caller.
func RespondWithServiceError(c *gin.Context, err error) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: "not_found"})
	case errors.Is(err, services.ErrUnsupportedMediaType):
		c.JSON(http.StatusUnsupportedMediaType, ErrorResponse{Message: err.Error(), Code: "unsupported_media_type"})
	case errors.Is(err, services.ErrExtractionFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: err.Error(), Code: "extraction_failed"})
	case errors.Is(err, services.ErrEvaluationUnavailable):
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: err.Error(), Code: "evaluation_unavailable"})
	case errors.Is(err, services.ErrEvaluationRejected):
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: err.Error(), Code: "evaluation_rejected"})
	case errors.Is(err, services.ErrAssessmentNotPublished):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "not_published"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error(), Code: "forbidden"})
	case services.IsValidation(err):
		var details interface{}
		var ve services.ValidationErrors
		if errors.As(err, &ve) {
			details = ve
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "validation failed",
			Details: details,
			Code:    "validation_failed",
		})
	case errors.Is(err, services.ErrDuplicateSubmissionID):
		// Programming-error signal; nothing the client can fix.
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: err.Error(), Code: "duplicate_submission_id"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
	}
}
