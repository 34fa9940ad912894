package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gradeworks/evaluation-service/internal/cache"
	"github.com/gradeworks/evaluation-service/internal/events"
	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/repositories"
	"github.com/gradeworks/evaluation-service/internal/validator"
)

const assessmentCacheTTL = 10 * time.Minute

type assessmentService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
}

func NewAssessmentService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger *slog.Logger,
) AssessmentService {
	return &assessmentService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		validator: v,
		logger:    logger,
	}
}

func (s *assessmentService) Create(ctx context.Context, req *CreateAssessmentRequest, actor *models.User) (*models.Assessment, error) {
	if !actor.IsTeacher() {
		return nil, ErrForbidden
	}

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	assessment := &models.Assessment{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusDraft,
		TeacherID:   actor.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	for i, q := range req.Questions {
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		assessment.Questions = append(assessment.Questions, models.Question{
			ID:            id,
			AssessmentID:  assessment.ID,
			Text:          q.Text,
			Marks:         q.Marks,
			CorrectAnswer: q.CorrectAnswer,
			Position:      i,
		})
	}

	if errs := s.validator.ValidateAssessment(assessment); len(errs) > 0 {
		return nil, errs
	}

	// TotalMarks is always derived from the questions, never taken from the
	// caller.
	assessment.TotalMarks = assessment.ComputeTotalMarks()

	if err := s.repo.Assessment().Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	s.logger.Info("assessment created",
		"assessment_id", assessment.ID,
		"teacher_id", actor.ID,
		"questions", len(assessment.Questions),
		"total_marks", assessment.TotalMarks)

	return assessment, nil
}

func (s *assessmentService) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	var cached models.Assessment
	if err := s.cache.Get(ctx, assessmentCacheKey(id), &cached); err == nil {
		return &cached, nil
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	// Only published assessments are worth caching; drafts still change.
	if assessment.Status == models.StatusPublished {
		if err := s.cache.Set(ctx, assessmentCacheKey(id), assessment, assessmentCacheTTL); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("failed to cache assessment", "assessment_id", id, "error", err)
		}
	}

	return assessment, nil
}

func (s *assessmentService) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, error) {
	assessments, err := s.repo.Assessment().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return assessments, nil
}

func (s *assessmentService) Publish(ctx context.Context, id string, actor *models.User) (*models.Assessment, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if !actor.IsTeacher() || assessment.TeacherID != actor.ID {
		return nil, ErrForbidden
	}

	if err := s.repo.Assessment().UpdateStatus(ctx, id, models.StatusPublished); err != nil {
		return nil, fmt.Errorf("failed to publish assessment: %w", err)
	}
	assessment.Status = models.StatusPublished

	if err := s.cache.Delete(ctx, assessmentCacheKey(id)); err != nil {
		s.logger.Warn("failed to invalidate assessment cache", "assessment_id", id, "error", err)
	}

	event := events.NewEvent(events.EventAssessmentPublished, events.AssessmentPublishedEvent{
		AssessmentID: assessment.ID,
		Title:        assessment.Title,
		TeacherID:    assessment.TeacherID,
		TotalMarks:   assessment.TotalMarks,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish assessment event", "assessment_id", id, "error", err)
	}

	s.logger.Info("assessment published", "assessment_id", id, "teacher_id", actor.ID)
	return assessment, nil
}

func assessmentCacheKey(id string) string {
	return "assessment:" + id
}
