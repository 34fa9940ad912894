package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/gradeworks/evaluation-service/internal/models"
)

type exportService struct {
	assessments AssessmentService
	submissions SubmissionService
	logger      *slog.Logger
}

func NewExportService(assessments AssessmentService, submissions SubmissionService, logger *slog.Logger) ExportService {
	return &exportService{
		assessments: assessments,
		submissions: submissions,
		logger:      logger,
	}
}

var resultColumns = []string{"Submission ID", "Student ID", "Submitted At", "Score", "Total Marks", "Evaluated"}

func (s *exportService) ExportResultsToExcel(ctx context.Context, assessmentID string) ([]byte, error) {
	assessment, submissions, err := s.loadResults(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	f.SetSheetName("Sheet1", sheet)

	for col, name := range resultColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, name)
	}

	for row, sub := range submissions {
		values := []interface{}{
			sub.ID,
			sub.StudentID,
			sub.SubmittedAt.Format("2006-01-02 15:04:05"),
			sub.Score,
			assessment.TotalMarks,
			sub.Evaluated,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("exported results to excel",
		"assessment_id", assessmentID,
		"submissions", len(submissions))
	return buf.Bytes(), nil
}

func (s *exportService) ExportResultsToCSV(ctx context.Context, assessmentID string) ([]byte, error) {
	assessment, submissions, err := s.loadResults(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(resultColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, sub := range submissions {
		record := []string{
			sub.ID,
			sub.StudentID,
			sub.SubmittedAt.Format("2006-01-02 15:04:05"),
			strconv.Itoa(sub.Score),
			strconv.Itoa(assessment.TotalMarks),
			strconv.FormatBool(sub.Evaluated),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) loadResults(ctx context.Context, assessmentID string) (*models.Assessment, []*models.Submission, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, nil, err
	}

	submissions, err := s.submissions.Query(ctx, SubmissionQuery{AssessmentID: &assessmentID})
	if err != nil {
		return nil, nil, err
	}
	return assessment, submissions, nil
}
