package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gradeworks/evaluation-service/internal/events"
	"github.com/gradeworks/evaluation-service/internal/llm"
	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/ocr"
	"github.com/gradeworks/evaluation-service/internal/validator"
)

type evaluationService struct {
	assessments AssessmentService
	submissions SubmissionService
	matcher     *Matcher
	extractor   ocr.TextExtractor
	evaluator   llm.Evaluator
	publisher   events.EventPublisher
	validator   *validator.Validator
	logger      *slog.Logger
}

// EvaluationConfig lists the pipeline's collaborators.
type EvaluationConfig struct {
	Assessments AssessmentService
	Submissions SubmissionService
	Extractor   ocr.TextExtractor
	Evaluator   llm.Evaluator
	Publisher   events.EventPublisher
	Validator   *validator.Validator
	Logger      *slog.Logger
}

func NewEvaluationService(cfg EvaluationConfig) EvaluationService {
	return &evaluationService{
		assessments: cfg.Assessments,
		submissions: cfg.Submissions,
		matcher:     NewMatcher(),
		extractor:   cfg.Extractor,
		evaluator:   cfg.Evaluator,
		publisher:   cfg.Publisher,
		validator:   cfg.Validator,
		logger:      cfg.Logger,
	}
}

// ===== TYPED PATH =====

func (s *evaluationService) SubmitTyped(ctx context.Context, assessmentID, studentID string, answers []AnswerInput) (*models.Submission, error) {
	assessment, err := s.resolvePublished(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		StudentID:    studentID,
		SubmittedAt:  time.Now(),
	}
	for _, in := range answers {
		submission.Answers = append(submission.Answers, models.Answer{
			QuestionID: in.QuestionID,
			Answer:     in.Answer,
		})
	}

	evaluated, err := s.EvaluateTyped(submission, assessment)
	if err != nil {
		return nil, err
	}

	if err := s.submissions.Record(ctx, evaluated); err != nil {
		return nil, err
	}

	s.publishEvaluated(ctx, evaluated, assessment, false)
	s.logger.Info("typed submission evaluated",
		"submission_id", evaluated.ID,
		"assessment_id", assessmentID,
		"student_id", studentID,
		"score", evaluated.Score)
	return evaluated, nil
}

// EvaluateTyped scores every answer against the assessment's answer key. An
// answer whose question id matches nothing in the assessment passes through
// unscored rather than failing the whole operation. The function is pure:
// re-running it on an already evaluated submission reproduces the result.
func (s *evaluationService) EvaluateTyped(submission *models.Submission, assessment *models.Assessment) (*models.Submission, error) {
	if assessment == nil {
		return nil, ErrAssessmentNotFound
	}
	if submission.AssessmentID != assessment.ID {
		return nil, fmt.Errorf("%w: submission references assessment %s", ErrAssessmentNotFound, submission.AssessmentID)
	}

	evaluated := submission.Clone()
	total := 0
	for i := range evaluated.Answers {
		answer := &evaluated.Answers[i]
		question, found := assessment.QuestionByID(answer.QuestionID)
		if !found {
			answer.Result = nil
			continue
		}

		correct := s.matcher.Matches(answer.Answer, question.CorrectAnswer)
		awarded := 0
		if correct {
			awarded = question.Marks
		}
		answer.Result = &models.AnswerResult{Correct: correct, MarksAwarded: awarded}
		total += awarded
	}

	evaluated.Score = total
	evaluated.Evaluated = true
	return evaluated, nil
}

func (s *evaluationService) ReEvaluate(ctx context.Context, submissionID string) (*models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	assessment, err := s.assessments.GetByID(ctx, submission.AssessmentID)
	if err != nil {
		return nil, err
	}

	evaluated, err := s.EvaluateTyped(submission, assessment)
	if err != nil {
		return nil, err
	}

	if err := s.submissions.Replace(ctx, evaluated); err != nil {
		return nil, err
	}
	return evaluated, nil
}

// ===== HANDWRITTEN PATH =====

// SubmitHandwritten runs the OCR and semantic-evaluation pipeline. Every
// step checks the context before starting so a cancelled run aborts between
// steps, never mid call, and no submission is recorded for a failed or
// cancelled run.
func (s *evaluationService) SubmitHandwritten(ctx context.Context, assessmentID, studentID string, image []byte) (*models.Submission, error) {
	assessment, err := s.resolvePublished(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extractedText, err := s.extractor.ExtractText(ctx, image)
	if err != nil {
		return nil, translateExtractionError(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	judgement, err := s.evaluator.EvaluateText(ctx, extractedText, assessment.AnswerKey())
	if err != nil {
		return nil, translateEvaluationError(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	submission := s.buildHandwrittenSubmission(assessment, studentID, extractedText, judgement)

	if err := s.submissions.Record(ctx, submission); err != nil {
		return nil, err
	}

	s.publishEvaluated(ctx, submission, assessment, true)
	s.logger.Info("handwritten submission evaluated",
		"submission_id", submission.ID,
		"assessment_id", assessmentID,
		"student_id", studentID,
		"score", submission.Score,
		"structured_verdicts", len(judgement.Verdicts) > 0)
	return submission, nil
}

// buildHandwrittenSubmission assigns marks from the judgement. With
// structured verdicts each question earns full or zero marks according to
// its verdict; a question the service did not mention earns zero. Without
// structured verdicts the legacy policy applies: the call succeeded, so
// every question earns full marks and the judgement text is recorded as the
// answer.
func (s *evaluationService) buildHandwrittenSubmission(assessment *models.Assessment, studentID, extractedText string, judgement *llm.Judgement) *models.Submission {
	verdicts := make(map[string]bool, len(judgement.Verdicts))
	for _, v := range judgement.Verdicts {
		verdicts[v.QuestionID] = v.Correct
	}
	structured := len(judgement.Verdicts) > 0

	recordedAnswer := judgement.Summary
	if recordedAnswer == "" {
		recordedAnswer = extractedText
	}

	submission := &models.Submission{
		ID:           uuid.NewString(),
		AssessmentID: assessment.ID,
		StudentID:    studentID,
		SubmittedAt:  time.Now(),
		Evaluated:    true,
	}

	total := 0
	for _, question := range assessment.Questions {
		correct := true
		if structured {
			correct = verdicts[question.ID]
		}
		awarded := 0
		if correct {
			awarded = question.Marks
		}
		total += awarded
		submission.Answers = append(submission.Answers, models.Answer{
			QuestionID: question.ID,
			Answer:     recordedAnswer,
			Result:     &models.AnswerResult{Correct: correct, MarksAwarded: awarded},
		})
	}
	submission.Score = total
	return submission
}

// ===== SHARED =====

func (s *evaluationService) resolvePublished(ctx context.Context, assessmentID string) (*models.Assessment, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.Status != models.StatusPublished {
		return nil, ErrAssessmentNotPublished
	}
	return assessment, nil
}

func (s *evaluationService) publishEvaluated(ctx context.Context, submission *models.Submission, assessment *models.Assessment, handwritten bool) {
	event := events.NewEvent(events.EventSubmissionEvaluated, events.SubmissionEvaluatedEvent{
		SubmissionID: submission.ID,
		AssessmentID: assessment.ID,
		StudentID:    submission.StudentID,
		Score:        submission.Score,
		TotalMarks:   assessment.TotalMarks,
		Handwritten:  handwritten,
		EvaluatedAt:  time.Now(),
	})
	// The submission is already recorded; a publish failure must not fail
	// the evaluation.
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish submission event",
			"submission_id", submission.ID,
			"error", err)
	}
}

func translateExtractionError(err error) error {
	switch {
	case errors.Is(err, ocr.ErrUnsupportedMediaType):
		return fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
	default:
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
}

func translateEvaluationError(err error) error {
	switch {
	case errors.Is(err, llm.ErrRejected):
		return fmt.Errorf("%w: %v", ErrEvaluationRejected, err)
	default:
		return fmt.Errorf("%w: %v", ErrEvaluationUnavailable, err)
	}
}
