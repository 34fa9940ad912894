package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradeworks/evaluation-service/internal/services"
	"github.com/gradeworks/evaluation-service/internal/utils"
)

// maxAnswerSheetBytes caps uploaded answer-sheet images.
const maxAnswerSheetBytes = 10 << 20

type SubmissionHandler struct {
	BaseHandler
	evaluation  services.EvaluationService
	submissions services.SubmissionService
}

func NewSubmissionHandler(evaluation services.EvaluationService, submissions services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler: NewBaseHandler(logger),
		evaluation:  evaluation,
		submissions: submissions,
	}
}

type typedSubmissionRequest struct {
	Answers []services.AnswerInput `json:"answers" validate:"required,dive"`
}

// SubmitTyped handles POST /assessments/:id/submissions.
func (h *SubmissionHandler) SubmitTyped(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	assessmentID := ParseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	var req typedSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	submission, err := h.evaluation.SubmitTyped(c.Request.Context(), assessmentID, user.ID, req.Answers)
	if err != nil {
		h.LogError(c, err, "typed submission failed")
		RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "submission evaluated", Data: submission})
}

// SubmitHandwritten handles POST /assessments/:id/submissions/handwritten
// with a multipart "answer_sheet" image.
func (h *SubmissionHandler) SubmitHandwritten(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	assessmentID := ParseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	fileHeader, err := c.FormFile("answer_sheet")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "missing answer_sheet file", Details: err.Error()})
		return
	}
	if fileHeader.Size > maxAnswerSheetBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Message: "answer sheet too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unreadable answer_sheet file", Details: err.Error()})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unreadable answer_sheet file", Details: err.Error()})
		return
	}

	submission, err := h.evaluation.SubmitHandwritten(c.Request.Context(), assessmentID, user.ID, image)
	if err != nil {
		h.LogError(c, err, "handwritten submission failed")
		RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "submission evaluated", Data: submission})
}

// ListSubmissions handles GET /submissions?student_id=&assessment_id=.
// Students only ever see their own submissions.
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	query := services.SubmissionQuery{}
	if studentID := c.Query("student_id"); studentID != "" {
		query.StudentID = &studentID
	}
	if assessmentID := c.Query("assessment_id"); assessmentID != "" {
		query.AssessmentID = &assessmentID
	}
	if user.IsStudent() {
		query.StudentID = &user.ID
	}

	submissions, err := h.submissions.Query(c.Request.Context(), query)
	if err != nil {
		h.LogError(c, err, "failed to query submissions")
		RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "submissions retrieved", Data: submissions})
}

// GetSubmission handles GET /submissions/:id.
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	submission, err := h.submissions.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondWithServiceError(c, err)
		return
	}
	if user.IsStudent() && submission.StudentID != user.ID {
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "not your submission"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "submission retrieved", Data: submission})
}

// ReEvaluate handles POST /submissions/:id/evaluate. Teachers only.
func (h *SubmissionHandler) ReEvaluate(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if !user.IsTeacher() {
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "only teachers can re-evaluate"})
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	submission, err := h.evaluation.ReEvaluate(c.Request.Context(), id)
	if err != nil {
		h.LogError(c, err, "re-evaluation failed")
		RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "submission re-evaluated", Data: submission})
}
