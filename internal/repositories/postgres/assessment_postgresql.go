package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/gradeworks/evaluation-service/internal/repositories"
	"gorm.io/gorm"
)

type AssessmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{db: db}
}

func (a *AssessmentPostgreSQL) Create(ctx context.Context, assessment *models.Assessment) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(assessment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return repositories.ErrDuplicateID
			}
			return fmt.Errorf("failed to create assessment: %w", err)
		}
		return nil
	})
}

func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	var assessment models.Assessment
	err := a.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&assessment, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, error) {
	query := a.db.WithContext(ctx).Model(&models.Assessment{}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at ASC")

	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var assessments []*models.Assessment
	if err := query.Find(&assessments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return assessments, nil
}

func (a *AssessmentPostgreSQL) UpdateStatus(ctx context.Context, id string, status models.AssessmentStatus) error {
	result := a.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update assessment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
