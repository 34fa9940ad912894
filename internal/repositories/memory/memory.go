// Package memory provides the in-memory repository implementations backing
// the evaluation pipeline by default. Submissions are kept as an append-only
// slice guarded by a mutex so concurrent records serialize and queries see a
// consistent snapshot in insertion order.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/repositories"
)

type repository struct {
	assessments *assessmentRepository
	submissions *submissionRepository
}

// NewRepository returns an empty in-memory repository bundle.
func NewRepository() repositories.Repository {
	return &repository{
		assessments: &assessmentRepository{byID: make(map[string]*models.Assessment)},
		submissions: &submissionRepository{byID: make(map[string]int)},
	}
}

func (r *repository) Assessment() repositories.AssessmentRepository { return r.assessments }
func (r *repository) Submission() repositories.SubmissionRepository { return r.submissions }

// ===== ASSESSMENTS =====

type assessmentRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.Assessment
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[assessment.ID]; exists {
		return repositories.ErrDuplicateID
	}
	cp := *assessment
	cp.Questions = append([]models.Question(nil), assessment.Questions...)
	r.byID[assessment.ID] = &cp
	r.order = append(r.order, assessment.ID)
	return nil
}

func (r *assessmentRepository) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *stored
	cp.Questions = append([]models.Question(nil), stored.Questions...)
	return &cp, nil
}

func (r *assessmentRepository) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Assessment
	for _, id := range r.order {
		a := r.byID[id]
		if filters.TeacherID != nil && a.TeacherID != *filters.TeacherID {
			continue
		}
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		cp := *a
		cp.Questions = append([]models.Question(nil), a.Questions...)
		result = append(result, &cp)
	}

	if filters.Offset > 0 {
		if filters.Offset >= len(result) {
			return nil, nil
		}
		result = result[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(result) {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (r *assessmentRepository) UpdateStatus(ctx context.Context, id string, status models.AssessmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Status = status
	stored.UpdatedAt = time.Now()
	return nil
}

// ===== SUBMISSIONS =====

type submissionRepository struct {
	mu    sync.RWMutex
	items []*models.Submission
	byID  map[string]int
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[submission.ID]; exists {
		return repositories.ErrDuplicateID
	}
	r.byID[submission.ID] = len(r.items)
	r.items = append(r.items, submission.Clone())
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.items[idx].Clone(), nil
}

func (r *submissionRepository) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Submission
	for _, s := range r.items {
		if filters.StudentID != nil && s.StudentID != *filters.StudentID {
			continue
		}
		if filters.AssessmentID != nil && s.AssessmentID != *filters.AssessmentID {
			continue
		}
		result = append(result, s.Clone())
	}
	return result, nil
}

func (r *submissionRepository) Replace(ctx context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[submission.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	r.items[idx] = submission.Clone()
	return nil
}
