package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"github.com/JobHunter-2025/skill-assessment-service/internal/validator"
)

// QuizService manages quiz definitions assembled from stored questions.
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, limit, offset int) ([]*models.Quiz, int64, error)
	Delete(ctx context.Context, id uint) error
}

type CreateQuizRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=200"`
	SkillTag        string `json:"skill_tag" validate:"required,max=100"`
	DurationSeconds int    `json:"duration_seconds" validate:"required,quiz_duration"`
	QuestionIDs     []uint `json:"question_ids" validate:"required,min=1"`
}

type quizService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// Every referenced question must exist before the quiz is assembled.
	questions, err := s.repo.Question().GetByIDs(ctx, req.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve question refs: %w", err)
	}
	found := make(map[uint]bool, len(questions))
	for _, q := range questions {
		found[q.ID] = true
	}
	for _, id := range req.QuestionIDs {
		if !found[id] {
			return nil, fmt.Errorf("%w: question %d", ErrQuizUnknownQuestion, id)
		}
	}

	quiz := &models.Quiz{
		Title:           req.Title,
		SkillTag:        req.SkillTag,
		DurationSeconds: req.DurationSeconds,
		CreatedBy:       creatorID,
	}
	for i, id := range req.QuestionIDs {
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			QuestionID: id,
			Position:   i,
		})
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created",
		"quiz_id", quiz.ID,
		"skill_tag", quiz.SkillTag,
		"question_count", len(req.QuestionIDs))

	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz with questions: %w", err)
	}
	return quiz, nil
}

func (s *quizService) List(ctx context.Context, limit, offset int) ([]*models.Quiz, int64, error) {
	return s.repo.Quiz().List(ctx, limit, offset)
}

func (s *quizService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.logger.Info("Quiz deleted", "quiz_id", id)
	return nil
}
