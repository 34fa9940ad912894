package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gradeworks/evaluation-service/internal/identity"
	"github.com/gradeworks/evaluation-service/internal/services"
	"github.com/gradeworks/evaluation-service/internal/utils"
)

type HandlerManager struct {
	assessmentHandler *AssessmentHandler
	submissionHandler *SubmissionHandler
	verifier          identity.Verifier
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	verifier identity.Verifier,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		assessmentHandler: NewAssessmentHandler(serviceManager.Assessment(), serviceManager.Export(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Evaluation(), serviceManager.Submission(), logger),
		verifier:          verifier,
	}
}

// SetupRoutes registers all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(identity.Middleware(hm.verifier))
	{
		assessments := v1.Group("/assessments")
		{
			assessments.POST("", hm.assessmentHandler.CreateAssessment)
			assessments.GET("", hm.assessmentHandler.ListAssessments)
			assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
			assessments.POST("/:id/publish", hm.assessmentHandler.PublishAssessment)
			assessments.GET("/:id/results/export", hm.assessmentHandler.ExportResults)

			assessments.POST("/:id/submissions", hm.submissionHandler.SubmitTyped)
			assessments.POST("/:id/submissions/handwritten", hm.submissionHandler.SubmitHandwritten)
		}

		submissions := v1.Group("/submissions")
		{
			submissions.GET("", hm.submissionHandler.ListSubmissions)
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.POST("/:id/evaluate", hm.submissionHandler.ReEvaluate)
		}
	}
}
