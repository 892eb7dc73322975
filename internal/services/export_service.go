package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService renders graded attempt results for reporting.
type ExportService interface {
	ExportQuizResultsToExcel(ctx context.Context, quizID uint) ([]byte, error)
	ExportQuizResultsToCSV(ctx context.Context, quizID uint) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var resultColumns = []string{
	"attempt_id", "holder_id", "status", "score",
	"correct_answers", "auto_gradable", "started_at", "graded_at",
}

func (s *exportService) ExportQuizResultsToExcel(ctx context.Context, quizID uint) ([]byte, error) {
	attempts, err := s.gradedAttempts(ctx, quizID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, col := range resultColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}

	for rowIdx, attempt := range attempts {
		for colIdx, value := range resultRow(attempt) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported quiz results to Excel", "quiz_id", quizID, "rows", len(attempts))
	return buf.Bytes(), nil
}

func (s *exportService) ExportQuizResultsToCSV(ctx context.Context, quizID uint) ([]byte, error) {
	attempts, err := s.gradedAttempts(ctx, quizID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(resultColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, attempt := range attempts {
		if err := w.Write(resultRow(attempt)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info("Exported quiz results to CSV", "quiz_id", quizID, "rows", len(attempts))
	return buf.Bytes(), nil
}

func (s *exportService) gradedAttempts(ctx context.Context, quizID uint) ([]*models.Attempt, error) {
	attempts, _, err := s.repo.Attempt().ListByQuiz(ctx, quizID, repositories.AttemptFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	graded := make([]*models.Attempt, 0, len(attempts))
	for _, attempt := range attempts {
		if attempt.GradedAt != nil {
			graded = append(graded, attempt)
		}
	}
	return graded, nil
}

func resultRow(attempt *models.Attempt) []string {
	score := ""
	if attempt.Score != nil {
		score = strconv.FormatFloat(*attempt.Score, 'f', 1, 64)
	}
	gradedAt := ""
	if attempt.GradedAt != nil {
		gradedAt = attempt.GradedAt.Format(time.RFC3339)
	}
	return []string{
		attempt.ID,
		attempt.HolderID,
		string(attempt.Status),
		score,
		strconv.Itoa(attempt.CorrectAnswerCount),
		strconv.Itoa(attempt.TotalAutoGradable),
		attempt.StartedAt.Format(time.RFC3339),
		gradedAt,
	}
}
