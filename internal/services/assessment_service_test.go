package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeworks/evaluation-service/internal/events"
	"github.com/gradeworks/evaluation-service/internal/models"
)

func TestAssessmentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("computes total marks from questions", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)

		// 5 + 10 + 15, regardless of anything the caller could supply.
		assert.Equal(t, 30, assessment.TotalMarks)
		assert.Equal(t, 30, assessment.ComputeTotalMarks())
	})

	t.Run("students cannot create assessments", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.services.Assessment().Create(ctx, &CreateAssessmentRequest{
			Title:     "X",
			Questions: []CreateQuestionRequest{{Text: "Q", Marks: 1, CorrectAnswer: "A"}},
		}, env.student)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("rejects duplicate question ids", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.services.Assessment().Create(ctx, &CreateAssessmentRequest{
			Title: "Dup",
			Questions: []CreateQuestionRequest{
				{ID: "q1", Text: "A", Marks: 1, CorrectAnswer: "a"},
				{ID: "q1", Text: "B", Marks: 1, CorrectAnswer: "b"},
			},
		}, env.teacher)
		require.Error(t, err)

		var ve ValidationErrors
		require.True(t, errors.As(err, &ve))
	})

	t.Run("generates ids for questions without one", func(t *testing.T) {
		env := newTestEnv(t)
		assessment, err := env.services.Assessment().Create(ctx, &CreateAssessmentRequest{
			Title:     "Auto IDs",
			Questions: []CreateQuestionRequest{{Text: "Q", Marks: 2, CorrectAnswer: "A"}},
		}, env.teacher)
		require.NoError(t, err)
		assert.NotEmpty(t, assessment.Questions[0].ID)
	})

	t.Run("rejects empty question list", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.services.Assessment().Create(ctx, &CreateAssessmentRequest{Title: "Empty"}, env.teacher)
		assert.Error(t, err)
	})
}

func TestAssessmentService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and emits event", func(t *testing.T) {
		env := newTestEnv(t)
		assessment := env.createPublishedAssessment(t)
		assert.Equal(t, models.StatusPublished, assessment.Status)

		published := env.publisher.PublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventAssessmentPublished, published[0].Type)
	})

	t.Run("only the owning teacher can publish", func(t *testing.T) {
		env := newTestEnv(t)
		assessment, err := env.services.Assessment().Create(ctx, &CreateAssessmentRequest{
			Title:     "Owned",
			Questions: []CreateQuestionRequest{{Text: "Q", Marks: 1, CorrectAnswer: "A"}},
		}, env.teacher)
		require.NoError(t, err)

		other := &models.User{ID: "teacher-2", Role: models.RoleTeacher}
		_, err = env.services.Assessment().Publish(ctx, assessment.ID, other)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing assessment", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.services.Assessment().Publish(ctx, "no-such-id", env.teacher)
		assert.ErrorIs(t, err, ErrAssessmentNotFound)
	})
}

func TestAssessmentService_GetByID(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.createPublishedAssessment(t)

	got, err := env.services.Assessment().GetByID(context.Background(), assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.ID, got.ID)
	assert.Len(t, got.Questions, 3)

	_, err = env.services.Assessment().GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}
