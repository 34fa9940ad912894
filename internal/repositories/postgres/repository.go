package postgres

import (
	"fmt"

	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	assessments repositories.AssessmentRepository
	submissions repositories.SubmissionRepository
}

// NewRepository migrates the schema and returns gorm-backed repositories.
func NewRepository(db *gorm.DB) (repositories.Repository, error) {
	if err := db.AutoMigrate(&models.Assessment{}, &models.Question{}, &submissionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &repository{
		assessments: NewAssessmentPostgreSQL(db),
		submissions: NewSubmissionPostgreSQL(db),
	}, nil
}

func (r *repository) Assessment() repositories.AssessmentRepository { return r.assessments }
func (r *repository) Submission() repositories.SubmissionRepository { return r.submissions }
