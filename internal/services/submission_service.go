package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/repositories"
)

type submissionService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewSubmissionService(repo repositories.Repository, logger *slog.Logger) SubmissionService {
	return &submissionService{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an evaluated submission to the store. An id collision means
// the caller's id generation is broken, not that the user should retry.
func (s *submissionService) Record(ctx context.Context, submission *models.Submission) error {
	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		if repositories.IsDuplicateIDError(err) {
			s.logger.Error("submission id collision", "submission_id", submission.ID)
			return ErrDuplicateSubmissionID
		}
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// Query returns recorded submissions matching every set filter, in insertion
// order.
func (s *submissionService) Query(ctx context.Context, query SubmissionQuery) ([]*models.Submission, error) {
	submissions, err := s.repo.Submission().List(ctx, repositories.SubmissionFilters{
		StudentID:    query.StudentID,
		AssessmentID: query.AssessmentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	return submissions, nil
}

func (s *submissionService) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

func (s *submissionService) Replace(ctx context.Context, submission *models.Submission) error {
	if err := s.repo.Submission().Replace(ctx, submission); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("failed to replace submission: %w", err)
	}
	return nil
}
