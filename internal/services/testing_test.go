package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gradeworks/evaluation-service/internal/cache"
	"github.com/gradeworks/evaluation-service/internal/events"
	"github.com/gradeworks/evaluation-service/internal/llm"
	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/repositories/memory"
	"github.com/gradeworks/evaluation-service/internal/validator"
)

// MockTextExtractor is a testify mock for the OCR adapter.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}

// MockSemanticEvaluator is a testify mock for the LLM adapter.
type MockSemanticEvaluator struct {
	mock.Mock
}

func (m *MockSemanticEvaluator) EvaluateText(ctx context.Context, extractedText string, answerKey []models.AnswerKeyEntry) (*llm.Judgement, error) {
	args := m.Called(ctx, extractedText, answerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Judgement), args.Error(1)
}

// testEnv wires the full service stack over the in-memory store with mocked
// external capabilities.
type testEnv struct {
	services  ServiceManager
	extractor *MockTextExtractor
	evaluator *MockSemanticEvaluator
	publisher *events.MockEventPublisher
	teacher   *models.User
	student   *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	extractor := &MockTextExtractor{}
	evaluator := &MockSemanticEvaluator{}
	publisher := events.NewMockEventPublisher(logger)

	manager := NewServiceManager(ManagerConfig{
		Repo:      memory.NewRepository(),
		Cache:     cache.NoopCache{},
		Extractor: extractor,
		Evaluator: evaluator,
		Publisher: publisher,
		Validator: validator.New(),
		Logger:    logger,
	})

	return &testEnv{
		services:  manager,
		extractor: extractor,
		evaluator: evaluator,
		publisher: publisher,
		teacher:   &models.User{ID: "teacher-1", Name: "T", Role: models.RoleTeacher},
		student:   &models.User{ID: "student-1", Name: "S", Role: models.RoleStudent},
	}
}

// createPublishedAssessment creates and publishes a three-question
// assessment with marks 5/10/15.
func (e *testEnv) createPublishedAssessment(t *testing.T) *models.Assessment {
	t.Helper()

	req := &CreateAssessmentRequest{
		Title:       "Mathematics Exam",
		Description: "Basic algebra and arithmetic",
		Questions: []CreateQuestionRequest{
			{ID: "q1", Text: "What is 2 + 2?", Marks: 5, CorrectAnswer: "4"},
			{ID: "q2", Text: "What is the square root of 16?", Marks: 10, CorrectAnswer: "4"},
			{ID: "q3", Text: "What is the unit of force in SI units?", Marks: 15, CorrectAnswer: "Newton"},
		},
	}

	assessment, err := e.services.Assessment().Create(context.Background(), req, e.teacher)
	require.NoError(t, err)

	published, err := e.services.Assessment().Publish(context.Background(), assessment.ID, e.teacher)
	require.NoError(t, err)
	return published
}
