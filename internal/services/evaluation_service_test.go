package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gradeworks/evaluation-service/internal/events"
	"github.com/gradeworks/evaluation-service/internal/llm"
	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/ocr"
)

func TestEvaluationService_SubmitTyped(t *testing.T) {
	ctx := context.Background()

	t.Run("scores answers against the key", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		submission, err := env.services.Evaluation().SubmitTyped(ctx, assessment.ID, env.student.ID, []AnswerInput{
			{QuestionID: "q1", Answer: " 4 "},
			{QuestionID: "q2", Answer: "5"},
			{QuestionID: "q3", Answer: "newton"},
		})
		require.NoError(t, err)

		assert.True(t, submission.Evaluated)
		assert.Equal(t, 20, submission.Score) // 5 + 0 + 15

		require.Len(t, submission.Answers, 3)
		require.True(t, submission.Answers[0].Scored())
		assert.True(t, submission.Answers[0].Result.Correct)
		assert.Equal(t, 5, submission.Answers[0].Result.MarksAwarded)
		assert.False(t, submission.Answers[1].Result.Correct)
		assert.Equal(t, 0, submission.Answers[1].Result.MarksAwarded)
		assert.True(t, submission.Answers[2].Result.Correct)
		assert.Equal(t, 15, submission.Answers[2].Result.MarksAwarded)
	})

	t.Run("score stays within bounds and equals the sum of awards", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		submission, err := env.services.Evaluation().SubmitTyped(ctx, assessment.ID, env.student.ID, []AnswerInput{
			{QuestionID: "q1", Answer: "4"},
			{QuestionID: "q2", Answer: "4"},
			{QuestionID: "q3", Answer: "Newton"},
		})
		require.NoError(t, err)

		sum := 0
		for _, a := range submission.Answers {
			require.True(t, a.Scored())
			sum += a.Result.MarksAwarded
		}
		assert.Equal(t, sum, submission.Score)
		assert.LessOrEqual(t, submission.Score, assessment.TotalMarks)
		assert.Equal(t, assessment.TotalMarks, submission.Score)
	})

	t.Run("unknown question id passes through unscored", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		submission, err := env.services.Evaluation().SubmitTyped(ctx, assessment.ID, env.student.ID, []AnswerInput{
			{QuestionID: "q1", Answer: "4"},
			{QuestionID: "ghost", Answer: "anything"},
		})
		require.NoError(t, err)

		assert.Equal(t, 5, submission.Score)
		assert.True(t, submission.Answers[0].Scored())
		assert.False(t, submission.Answers[1].Scored())
	})

	t.Run("missing assessment", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.services.Evaluation().SubmitTyped(ctx, "missing", env.student.ID, nil)
		assert.ErrorIs(t, err, ErrAssessmentNotFound)
	})

	t.Run("draft assessment rejects submissions", func(t *testing.T) {
		env := newTestEnv(t)
		draft, err := env.services.Assessment().Create(ctx, &CreateAssessmentRequest{
			Title:     "Draft",
			Questions: []CreateQuestionRequest{{ID: "q1", Text: "Q", Marks: 1, CorrectAnswer: "A"}},
		}, env.teacher)
		require.NoError(t, err)

		_, err = env.services.Evaluation().SubmitTyped(ctx, draft.ID, env.student.ID, nil)
		assert.ErrorIs(t, err, ErrAssessmentNotPublished)
	})

	t.Run("emits submission.evaluated event", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)
		env.publisher.ClearEvents()

		_, err := env.services.Evaluation().SubmitTyped(ctx, assessment.ID, env.student.ID, []AnswerInput{
			{QuestionID: "q1", Answer: "4"},
		})
		require.NoError(t, err)

		published := env.publisher.PublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSubmissionEvaluated, published[0].Type)
		payload := published[0].Data.(events.SubmissionEvaluatedEvent)
		assert.False(t, payload.Handwritten)
		assert.Equal(t, 5, payload.Score)
	})
}

func TestEvaluationService_EvaluateTyped_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.createPublishedAssessment(t)

	submission := &models.Submission{
		ID:           "sub-1",
		AssessmentID: assessment.ID,
		StudentID:    env.student.ID,
		Answers: []models.Answer{
			{QuestionID: "q1", Answer: "4"},
			{QuestionID: "q2", Answer: "wrong"},
			{QuestionID: "q3", Answer: "NEWTON "},
		},
	}

	first, err := env.services.Evaluation().EvaluateTyped(submission, assessment)
	require.NoError(t, err)
	second, err := env.services.Evaluation().EvaluateTyped(first, assessment)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	for i := range first.Answers {
		require.Equal(t, first.Answers[i].Scored(), second.Answers[i].Scored())
		if first.Answers[i].Scored() {
			assert.Equal(t, *first.Answers[i].Result, *second.Answers[i].Result)
		}
	}

	// The input submission is untouched.
	assert.False(t, submission.Evaluated)
	assert.False(t, submission.Answers[0].Scored())
}

func TestEvaluationService_SubmitHandwritten(t *testing.T) {
	ctx := context.Background()
	sheet := []byte("fake image bytes")

	t.Run("structured verdicts award per-question marks", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		env.extractor.On("ExtractText", mock.Anything, sheet).Return("1) 4  2) 5  3) newton", nil)
		env.evaluator.On("EvaluateText", mock.Anything, "1) 4  2) 5  3) newton", assessment.AnswerKey()).
			Return(&llm.Judgement{
				Verdicts: []llm.QuestionVerdict{
					{QuestionID: "q1", Correct: true},
					{QuestionID: "q2", Correct: false},
					{QuestionID: "q3", Correct: true},
				},
				Summary: "two of three correct",
			}, nil)

		submission, err := env.services.Evaluation().SubmitHandwritten(ctx, assessment.ID, env.student.ID, sheet)
		require.NoError(t, err)

		assert.True(t, submission.Evaluated)
		assert.Equal(t, 20, submission.Score)
		require.Len(t, submission.Answers, 3)
		assert.Equal(t, "two of three correct", submission.Answers[0].Answer)
		assert.False(t, submission.Answers[1].Result.Correct)
	})

	t.Run("unstructured judgement falls back to full marks", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		env.extractor.On("ExtractText", mock.Anything, sheet).Return("scribbles", nil)
		env.evaluator.On("EvaluateText", mock.Anything, "scribbles", assessment.AnswerKey()).
			Return(&llm.Judgement{Summary: "looks broadly correct"}, nil)

		submission, err := env.services.Evaluation().SubmitHandwritten(ctx, assessment.ID, env.student.ID, sheet)
		require.NoError(t, err)

		assert.Equal(t, assessment.TotalMarks, submission.Score)
		for _, a := range submission.Answers {
			require.True(t, a.Scored())
			assert.True(t, a.Result.Correct)
			assert.Equal(t, "looks broadly correct", a.Answer)
		}
	})

	t.Run("empty extracted text still reaches the evaluator", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		env.extractor.On("ExtractText", mock.Anything, sheet).Return("", nil)
		env.evaluator.On("EvaluateText", mock.Anything, "", assessment.AnswerKey()).
			Return(&llm.Judgement{Summary: "nothing legible"}, nil)

		_, err := env.services.Evaluation().SubmitHandwritten(ctx, assessment.ID, env.student.ID, sheet)
		require.NoError(t, err)
		env.evaluator.AssertExpectations(t)
	})

	t.Run("no submission is recorded when OCR fails", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		env.extractor.On("ExtractText", mock.Anything, sheet).Return("", ocr.ErrExtractionFailed)

		_, err := env.services.Evaluation().SubmitHandwritten(ctx, assessment.ID, env.student.ID, sheet)
		assert.ErrorIs(t, err, ErrExtractionFailed)

		stored, err := env.services.Submission().Query(ctx, SubmissionQuery{})
		require.NoError(t, err)
		assert.Empty(t, stored)
		env.evaluator.AssertNotCalled(t, "EvaluateText", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-image input maps to unsupported media type", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		env.extractor.On("ExtractText", mock.Anything, sheet).Return("", ocr.ErrUnsupportedMediaType)

		_, err := env.services.Evaluation().SubmitHandwritten(ctx, assessment.ID, env.student.ID, sheet)
		assert.ErrorIs(t, err, ErrUnsupportedMediaType)
	})

	t.Run("no submission is recorded when evaluation fails", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		env.extractor.On("ExtractText", mock.Anything, sheet).Return("text", nil)
		env.evaluator.On("EvaluateText", mock.Anything, "text", assessment.AnswerKey()).
			Return(nil, llm.ErrServiceUnavailable)

		_, err := env.services.Evaluation().SubmitHandwritten(ctx, assessment.ID, env.student.ID, sheet)
		assert.ErrorIs(t, err, ErrEvaluationUnavailable)

		stored, err := env.services.Submission().Query(ctx, SubmissionQuery{})
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("rejected evaluation surfaces as rejection", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		env.extractor.On("ExtractText", mock.Anything, sheet).Return("text", nil)
		env.evaluator.On("EvaluateText", mock.Anything, "text", assessment.AnswerKey()).
			Return(nil, llm.ErrRejected)

		_, err := env.services.Evaluation().SubmitHandwritten(ctx, assessment.ID, env.student.ID, sheet)
		assert.ErrorIs(t, err, ErrEvaluationRejected)
	})

	t.Run("cancelled context aborts before recording", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		cancelled, cancel := context.WithCancel(ctx)
		env.extractor.On("ExtractText", mock.Anything, sheet).
			Run(func(args mock.Arguments) { cancel() }).
			Return("text", nil)

		_, err := env.services.Evaluation().SubmitHandwritten(cancelled, assessment.ID, env.student.ID, sheet)
		assert.ErrorIs(t, err, context.Canceled)

		stored, err := env.services.Submission().Query(ctx, SubmissionQuery{})
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestEvaluationService_ReEvaluate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	assessment := env.createPublishedAssessment(t)

	submission, err := env.services.Evaluation().SubmitTyped(ctx, assessment.ID, env.student.ID, []AnswerInput{
		{QuestionID: "q1", Answer: "4"},
	})
	require.NoError(t, err)

	again, err := env.services.Evaluation().ReEvaluate(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.Score, again.Score)
	assert.Equal(t, submission.ID, again.ID)

	_, err = env.services.Evaluation().ReEvaluate(ctx, "missing")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}
