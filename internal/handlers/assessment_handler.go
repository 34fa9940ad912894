package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/repositories"
	"github.com/gradeworks/evaluation-service/internal/services"
	"github.com/gradeworks/evaluation-service/internal/utils"
)

type AssessmentHandler struct {
	BaseHandler
	service services.AssessmentService
	export  services.ExportService
}

func NewAssessmentHandler(service services.AssessmentService, export services.ExportService, logger utils.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		export:      export,
	}
}

// CreateAssessment handles POST /assessments.
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	assessment, err := h.service.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.LogError(c, err, "failed to create assessment")
		RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "assessment created", Data: assessment})
}

// ListAssessments handles GET /assessments. Teachers see their own;
// everyone else sees published ones.
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	filters := repositories.AssessmentFilters{}
	if user.IsTeacher() {
		filters.TeacherID = &user.ID
	} else {
		published := models.StatusPublished
		filters.Status = &published
	}

	assessments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.LogError(c, err, "failed to list assessments")
		RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "assessments retrieved", Data: assessments})
}

// GetAssessment handles GET /assessments/:id.
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	assessment, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "assessment retrieved", Data: assessment})
}

// PublishAssessment handles POST /assessments/:id/publish.
func (h *AssessmentHandler) PublishAssessment(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	assessment, err := h.service.Publish(c.Request.Context(), id, user)
	if err != nil {
		h.LogError(c, err, "failed to publish assessment")
		RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "assessment published", Data: assessment})
}

// ExportResults handles GET /assessments/:id/results/export?format=xlsx|csv.
func (h *AssessmentHandler) ExportResults(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if !user.IsTeacher() {
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "only teachers can export results"})
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	var (
		payload     []byte
		contentType string
		filename    string
		err         error
	)
	switch format {
	case "xlsx":
		payload, err = h.export.ExportResultsToExcel(c.Request.Context(), id)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "results.xlsx"
	case "csv":
		payload, err = h.export.ExportResultsToCSV(c.Request.Context(), id)
		contentType = "text/csv"
		filename = "results.csv"
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unsupported export format", Details: format})
		return
	}
	if err != nil {
		h.LogError(c, err, "failed to export results")
		RespondWithServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
