package services

import (
	"context"
	"log/slog"

	"github.com/gradeworks/evaluation-service/internal/cache"
	"github.com/gradeworks/evaluation-service/internal/events"
	"github.com/gradeworks/evaluation-service/internal/llm"
	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/ocr"
	"github.com/gradeworks/evaluation-service/internal/repositories"
	"github.com/gradeworks/evaluation-service/internal/validator"
)

// ===== REQUEST / RESPONSE TYPES =====

type CreateQuestionRequest struct {
	ID            string `json:"id" validate:"omitempty,max=64"`
	Text          string `json:"text" validate:"required,min=1"`
	Marks         int    `json:"marks" validate:"required,min=1"`
	CorrectAnswer string `json:"correct_answer" validate:"required"`
}

type CreateAssessmentRequest struct {
	Title       string                  `json:"title" validate:"required,min=1,max=200"`
	Description string                  `json:"description" validate:"max=1000"`
	Questions   []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// AnswerInput is one typed answer as submitted by the student.
type AnswerInput struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

// SubmissionQuery carries the aggregator's optional filters; non-nil fields
// combine with AND.
type SubmissionQuery struct {
	StudentID    *string
	AssessmentID *string
}

// ===== SERVICE INTERFACES =====

// AssessmentService owns the question/answer-key store.
type AssessmentService interface {
	Create(ctx context.Context, req *CreateAssessmentRequest, actor *models.User) (*models.Assessment, error)
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, error)
	Publish(ctx context.Context, id string, actor *models.User) (*models.Assessment, error)
}

// EvaluationService runs the answer-evaluation pipeline for both input
// paths. Both produce a fully evaluated, recorded submission or an error and
// no submission at all.
type EvaluationService interface {
	SubmitTyped(ctx context.Context, assessmentID, studentID string, answers []AnswerInput) (*models.Submission, error)
	SubmitHandwritten(ctx context.Context, assessmentID, studentID string, image []byte) (*models.Submission, error)

	// EvaluateTyped is the pure scoring function: same submission and
	// assessment in, same scores out, no I/O.
	EvaluateTyped(submission *models.Submission, assessment *models.Assessment) (*models.Submission, error)

	// ReEvaluate re-runs typed scoring for a stored submission and replaces
	// the stored record.
	ReEvaluate(ctx context.Context, submissionID string) (*models.Submission, error)
}

// SubmissionService is the aggregator over recorded submissions. Replacement
// is the only mutation allowed after evaluation completes.
type SubmissionService interface {
	Record(ctx context.Context, submission *models.Submission) error
	Query(ctx context.Context, query SubmissionQuery) ([]*models.Submission, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	Replace(ctx context.Context, submission *models.Submission) error
}

// ExportService renders an assessment's results for download.
type ExportService interface {
	ExportResultsToExcel(ctx context.Context, assessmentID string) ([]byte, error)
	ExportResultsToCSV(ctx context.Context, assessmentID string) ([]byte, error)
}

// ===== SERVICE MANAGER =====

// ServiceManager wires and exposes all services.
type ServiceManager interface {
	Assessment() AssessmentService
	Evaluation() EvaluationService
	Submission() SubmissionService
	Export() ExportService
}

type serviceManager struct {
	assessment AssessmentService
	evaluation EvaluationService
	submission SubmissionService
	export     ExportService
}

// ManagerConfig lists the collaborators the services need.
type ManagerConfig struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Extractor ocr.TextExtractor
	Evaluator llm.Evaluator
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger
}

func NewServiceManager(cfg ManagerConfig) ServiceManager {
	assessment := NewAssessmentService(cfg.Repo, cfg.Cache, cfg.Publisher, cfg.Validator, cfg.Logger)
	submission := NewSubmissionService(cfg.Repo, cfg.Logger)
	evaluation := NewEvaluationService(EvaluationConfig{
		Assessments: assessment,
		Submissions: submission,
		Extractor:   cfg.Extractor,
		Evaluator:   cfg.Evaluator,
		Publisher:   cfg.Publisher,
		Validator:   cfg.Validator,
		Logger:      cfg.Logger,
	})
	export := NewExportService(assessment, submission, cfg.Logger)

	return &serviceManager{
		assessment: assessment,
		evaluation: evaluation,
		submission: submission,
		export:     export,
	}
}

func (m *serviceManager) Assessment() AssessmentService { return m.assessment }
func (m *serviceManager) Evaluation() EvaluationService { return m.evaluation }
func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Export() ExportService         { return m.export }
