package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/repositories"
)

func TestAssessmentRepository(t *testing.T) {
	ctx := context.Background()

	assessment := &models.Assessment{
		ID:        "a1",
		Title:     "Physics Test",
		TeacherID: "t1",
		Status:    models.StatusDraft,
		Questions: []models.Question{
			{ID: "q1", AssessmentID: "a1", Text: "F?", Marks: 15, CorrectAnswer: "F = ma"},
		},
	}

	t.Run("create and get", func(t *testing.T) {
		repo := NewRepository().Assessment()
		require.NoError(t, repo.Create(ctx, assessment))

		got, err := repo.GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Physics Test", got.Title)
		require.Len(t, got.Questions, 1)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		repo := NewRepository().Assessment()
		require.NoError(t, repo.Create(ctx, assessment))
		assert.ErrorIs(t, repo.Create(ctx, assessment), repositories.ErrDuplicateID)
	})

	t.Run("missing id", func(t *testing.T) {
		repo := NewRepository().Assessment()
		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("returned copy does not alias the store", func(t *testing.T) {
		repo := NewRepository().Assessment()
		require.NoError(t, repo.Create(ctx, assessment))

		got, err := repo.GetByID(ctx, "a1")
		require.NoError(t, err)
		got.Questions[0].CorrectAnswer = "tampered"
		got.Title = "tampered"

		again, err := repo.GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Physics Test", again.Title)
		assert.Equal(t, "F = ma", again.Questions[0].CorrectAnswer)
	})

	t.Run("list filters by teacher and status", func(t *testing.T) {
		repo := NewRepository().Assessment()
		require.NoError(t, repo.Create(ctx, &models.Assessment{ID: "a1", TeacherID: "t1", Status: models.StatusDraft}))
		require.NoError(t, repo.Create(ctx, &models.Assessment{ID: "a2", TeacherID: "t2", Status: models.StatusPublished}))
		require.NoError(t, repo.Create(ctx, &models.Assessment{ID: "a3", TeacherID: "t1", Status: models.StatusPublished}))

		t1 := "t1"
		byTeacher, err := repo.List(ctx, repositories.AssessmentFilters{TeacherID: &t1})
		require.NoError(t, err)
		assert.Len(t, byTeacher, 2)

		published := models.StatusPublished
		both, err := repo.List(ctx, repositories.AssessmentFilters{TeacherID: &t1, Status: &published})
		require.NoError(t, err)
		require.Len(t, both, 1)
		assert.Equal(t, "a3", both[0].ID)
	})

	t.Run("update status", func(t *testing.T) {
		repo := NewRepository().Assessment()
		require.NoError(t, repo.Create(ctx, assessment))
		require.NoError(t, repo.UpdateStatus(ctx, "a1", models.StatusPublished))

		got, err := repo.GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPublished, got.Status)

		assert.ErrorIs(t, repo.UpdateStatus(ctx, "nope", models.StatusPublished), repositories.ErrNotFound)
	})
}

func TestSubmissionRepository(t *testing.T) {
	ctx := context.Background()

	sub := func(id string) *models.Submission {
		return &models.Submission{
			ID:           id,
			AssessmentID: "a1",
			StudentID:    "s1",
			Evaluated:    true,
			Answers: []models.Answer{
				{QuestionID: "q1", Answer: "4", Result: &models.AnswerResult{Correct: true, MarksAwarded: 5}},
			},
			Score: 5,
		}
	}

	t.Run("stored copy is isolated from caller mutation", func(t *testing.T) {
		repo := NewRepository().Submission()
		original := sub("s1")
		require.NoError(t, repo.Create(ctx, original))

		original.Score = 999
		original.Answers[0].Result.MarksAwarded = 999

		got, err := repo.GetByID(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 5, got.Score)
		assert.Equal(t, 5, got.Answers[0].Result.MarksAwarded)
	})

	t.Run("replace swaps the stored record in place", func(t *testing.T) {
		repo := NewRepository().Submission()
		require.NoError(t, repo.Create(ctx, sub("s1")))
		require.NoError(t, repo.Create(ctx, sub("s2")))

		updated := sub("s1")
		updated.Score = 0
		require.NoError(t, repo.Replace(ctx, updated))

		all, err := repo.List(ctx, repositories.SubmissionFilters{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		// Replacement keeps the original position.
		assert.Equal(t, "s1", all[0].ID)
		assert.Equal(t, 0, all[0].Score)

		assert.ErrorIs(t, repo.Replace(ctx, sub("missing")), repositories.ErrNotFound)
	})
}
