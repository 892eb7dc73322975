package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"github.com/JobHunter-2025/skill-assessment-service/internal/parser"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"github.com/JobHunter-2025/skill-assessment-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

// QuestionService manages the question bank: bulk ingestion of raw dumps,
// spreadsheet import, and plain CRUD.
type QuestionService interface {
	ImportText(ctx context.Context, text string, skillTag string, points int, creatorID string) (*models.ImportReport, error)
	ImportExcel(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportReport, error)

	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetBySkill(ctx context.Context, skillTag string, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
	List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
	Delete(ctx context.Context, id uint) error
}

type CreateQuestionRequest struct {
	Content       string                  `json:"content" validate:"required"`
	Type          models.QuestionType     `json:"type" validate:"required,question_type"`
	Options       []models.QuestionOption `json:"options" validate:"omitempty,min=2,dive"`
	CorrectAnswer json.RawMessage         `json:"correct_answer"`
	Points        int                     `json:"points" validate:"required,min=1"`
	SkillTag      string                  `json:"skill_tag" validate:"required,max=100"`
}

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== BULK IMPORT =====

// ImportText runs the ingestion parser over a raw question dump and stores
// each valid draft independently. Parse rejections and store failures are
// both reported per question; one bad record never aborts the batch.
func (s *questionService) ImportText(ctx context.Context, text string, skillTag string, points int, creatorID string) (*models.ImportReport, error) {
	if skillTag == "" {
		return nil, NewValidationError("skill_tag", "is required", skillTag)
	}
	if points < 1 {
		points = 1
	}

	s.logger.Info("Starting text import", "skill_tag", skillTag, "creator_id", creatorID)

	parsed := parser.Parse(text)

	report := &models.ImportReport{
		TotalQuestions: len(parsed.Drafts) + len(parsed.Invalid),
	}
	for _, invalid := range parsed.Invalid {
		report.Rejections = append(report.Rejections, models.ImportRejection{
			Ordinal: invalid.Ordinal,
			Stem:    invalid.Stem,
			Stage:   "parse",
			Reason:  invalid.Reason,
		})
		report.RejectedCount++
	}

	for i, draft := range parsed.Drafts {
		question, err := draftToQuestion(draft, skillTag, points, creatorID)
		if err == nil {
			err = s.repo.Question().Create(ctx, question)
		}
		if err != nil {
			report.Rejections = append(report.Rejections, models.ImportRejection{
				Ordinal: i + 1,
				Stem:    draft.Content,
				Stage:   "store",
				Reason:  err.Error(),
			})
			report.RejectedCount++
			continue
		}
		report.CreatedIDs = append(report.CreatedIDs, question.ID)
		report.CreatedCount++
	}

	s.logger.Info("Text import completed",
		"total", report.TotalQuestions,
		"created", report.CreatedCount,
		"rejected", report.RejectedCount)

	return report, nil
}

// draftToQuestion converts a parser draft into a stored single-choice
// question; the dump format only expresses one correct label.
func draftToQuestion(draft parser.QuestionDraft, skillTag string, points int, creatorID string) (*models.Question, error) {
	options := make([]models.QuestionOption, len(draft.Options))
	for i, opt := range draft.Options {
		options[i] = models.QuestionOption{Label: opt.Label, Text: opt.Text}
	}

	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	correctJSON, err := json.Marshal(draft.CorrectAnswerLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to encode correct answer: %w", err)
	}

	return &models.Question{
		Content:       draft.Content,
		Type:          models.SingleChoice,
		Options:       optionsJSON,
		CorrectAnswer: correctJSON,
		Points:        points,
		SkillTag:      skillTag,
		CreatedBy:     creatorID,
	}, nil
}

// ImportExcel reads a spreadsheet with columns: content, type, options
// ("A. text | B. text"), correct_answer ("A" or "A,C"), points, skill_tag.
func (s *questionService) ImportExcel(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportReport, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "Excel must have header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"content", "type", "correct_answer", "skill_tag"} {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	report := &models.ImportReport{TotalQuestions: len(rows) - 1}

	for rowIndex, row := range rows[1:] {
		question, err := s.parseExcelRow(row, headerMap, creatorID)
		if err == nil {
			err = s.repo.Question().Create(ctx, question)
		}
		if err != nil {
			report.Rejections = append(report.Rejections, models.ImportRejection{
				Ordinal: rowIndex + 2, // 1-based, after the header
				Stage:   "parse",
				Reason:  err.Error(),
			})
			report.RejectedCount++
			continue
		}
		report.CreatedIDs = append(report.CreatedIDs, question.ID)
		report.CreatedCount++
	}

	s.logger.Info("Excel import completed",
		"total", report.TotalQuestions,
		"created", report.CreatedCount,
		"rejected", report.RejectedCount)

	return report, nil
}

func (s *questionService) parseExcelRow(row []string, headerMap map[string]int, creatorID string) (*models.Question, error) {
	cell := func(name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	qType := models.QuestionType(cell("type"))
	req := &CreateQuestionRequest{
		Content:  cell("content"),
		Type:     qType,
		SkillTag: cell("skill_tag"),
		Points:   1,
	}
	if p := cell("points"); p != "" {
		points, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid points value %q", p)
		}
		req.Points = points
	}

	if qType != models.FreeText {
		for _, part := range strings.Split(cell("options"), "|") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			label, text, found := strings.Cut(part, ".")
			if !found {
				return nil, fmt.Errorf("malformed option %q, want \"A. text\"", part)
			}
			req.Options = append(req.Options, models.QuestionOption{
				Label: strings.TrimSpace(label),
				Text:  strings.TrimSpace(text),
			})
		}
	}

	correct := cell("correct_answer")
	switch qType {
	case models.SingleChoice:
		encoded, _ := json.Marshal(correct)
		req.CorrectAnswer = encoded
	case models.MultiSelect:
		labels := strings.Split(correct, ",")
		for i := range labels {
			labels[i] = strings.TrimSpace(labels[i])
		}
		encoded, _ := json.Marshal(labels)
		req.CorrectAnswer = encoded
	case models.FreeText:
		if correct != "" {
			encoded, _ := json.Marshal(correct)
			req.CorrectAnswer = encoded
		}
	}

	return s.buildQuestion(req, creatorID)
}

// ===== CRUD =====

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error) {
	question, err := s.buildQuestion(req, creatorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", question.ID, "type", question.Type)
	return question, nil
}

func (s *questionService) buildQuestion(req *CreateQuestionRequest, creatorID string) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateAnswerForType(req); err != nil {
		return nil, err
	}

	optionsJSON, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	return &models.Question{
		Content:       req.Content,
		Type:          req.Type,
		Options:       optionsJSON,
		CorrectAnswer: []byte(req.CorrectAnswer),
		Points:        req.Points,
		SkillTag:      req.SkillTag,
		CreatedBy:     creatorID,
	}, nil
}

// validateAnswerForType checks the correct-answer payload against the
// question type and its option labels.
func validateAnswerForType(req *CreateQuestionRequest) error {
	labels := make(map[string]bool, len(req.Options))
	for _, opt := range req.Options {
		labels[opt.Label] = true
	}

	switch req.Type {
	case models.SingleChoice:
		var label string
		if err := json.Unmarshal(req.CorrectAnswer, &label); err != nil {
			return NewValidationError("correct_answer", "must be a single option label", string(req.CorrectAnswer))
		}
		if !labels[label] {
			return NewValidationError("correct_answer", fmt.Sprintf("label %q does not match any option", label), label)
		}
	case models.MultiSelect:
		var set []string
		if err := json.Unmarshal(req.CorrectAnswer, &set); err != nil || len(set) == 0 {
			return NewValidationError("correct_answer", "must be a non-empty array of option labels", string(req.CorrectAnswer))
		}
		for _, label := range set {
			if !labels[label] {
				return NewValidationError("correct_answer", fmt.Sprintf("label %q does not match any option", label), label)
			}
		}
	case models.FreeText:
		if len(req.Options) > 0 {
			return NewValidationError("options", "free_text questions carry no options", len(req.Options))
		}
	default:
		return ErrQuestionInvalidType
	}
	return nil
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) GetBySkill(ctx context.Context, skillTag string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return s.repo.Question().GetBySkill(ctx, skillTag, filters)
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return s.repo.Question().List(ctx, filters)
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", id)
	return nil
}
