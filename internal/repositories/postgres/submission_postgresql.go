package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// submissionRow is the storage shape: answers (with their results) travel as
// a JSONB document, seq preserves insertion order across queries.
type submissionRow struct {
	ID           string         `gorm:"primaryKey;size:64"`
	Seq          int64          `gorm:"autoIncrement;uniqueIndex"`
	AssessmentID string         `gorm:"not null;size:64;index"`
	StudentID    string         `gorm:"not null;size:64;index"`
	SubmittedAt  time.Time      `gorm:"not null"`
	Answers      datatypes.JSON `gorm:"type:jsonb"`
	Score        int            `gorm:"not null"`
	Evaluated    bool           `gorm:"not null"`
}

func (submissionRow) TableName() string {
	return "submissions"
}

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	row, err := toRow(submission)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicateID
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var row submissionRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return fromRow(&row)
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	query := s.db.WithContext(ctx).Model(&submissionRow{}).Order("seq ASC")

	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.AssessmentID != nil {
		query = query.Where("assessment_id = ?", *filters.AssessmentID)
	}

	var rows []submissionRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	submissions := make([]*models.Submission, 0, len(rows))
	for i := range rows {
		sub, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, sub)
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) Replace(ctx context.Context, submission *models.Submission) error {
	row, err := toRow(submission)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(&submissionRow{}).
		Where("id = ?", submission.ID).
		Updates(map[string]interface{}{
			"answers":   row.Answers,
			"score":     row.Score,
			"evaluated": row.Evaluated,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to replace submission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func toRow(submission *models.Submission) (*submissionRow, error) {
	answers, err := json.Marshal(submission.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	return &submissionRow{
		ID:           submission.ID,
		AssessmentID: submission.AssessmentID,
		StudentID:    submission.StudentID,
		SubmittedAt:  submission.SubmittedAt,
		Answers:      datatypes.JSON(answers),
		Score:        submission.Score,
		Evaluated:    submission.Evaluated,
	}, nil
}

func fromRow(row *submissionRow) (*models.Submission, error) {
	var answers []models.Answer
	if len(row.Answers) > 0 {
		if err := json.Unmarshal(row.Answers, &answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
	}
	return &models.Submission{
		ID:           row.ID,
		AssessmentID: row.AssessmentID,
		StudentID:    row.StudentID,
		SubmittedAt:  row.SubmittedAt,
		Answers:      answers,
		Score:        row.Score,
		Evaluated:    row.Evaluated,
	}, nil
}
