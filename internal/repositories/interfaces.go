package repositories

import (
	"context"
	"errors"

	"github.com/gradeworks/evaluation-service/internal/models"
)

// Storage-level sentinel errors. Services translate these into their own
// taxonomy so handlers never see a repository error directly.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("duplicate record id")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateIDError(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}

// ===== FILTERS =====

// AssessmentFilters narrows assessment listings. Nil fields are ignored.
type AssessmentFilters struct {
	TeacherID *string
	Status    *models.AssessmentStatus
	Limit     int
	Offset    int
}

// SubmissionFilters narrows submission queries. Nil fields are ignored and
// non-nil fields combine with AND.
type SubmissionFilters struct {
	StudentID    *string
	AssessmentID *string
}

// ===== REPOSITORY INTERFACES =====

// AssessmentRepository is the read-mostly question/answer-key store.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	List(ctx context.Context, filters AssessmentFilters) ([]*models.Assessment, error)
	UpdateStatus(ctx context.Context, id string, status models.AssessmentStatus) error
}

// SubmissionRepository stores evaluated submissions. Implementations must
// serialize writes, reject duplicate ids with ErrDuplicateID, and preserve
// insertion order in List results.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, error)
	Replace(ctx context.Context, submission *models.Submission) error
}

// Repository bundles the per-aggregate repositories the services consume.
type Repository interface {
	Assessment() AssessmentRepository
	Submission() SubmissionRepository
}
