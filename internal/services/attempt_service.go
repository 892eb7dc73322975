package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JobHunter-2025/skill-assessment-service/internal/cache"
	"github.com/JobHunter-2025/skill-assessment-service/internal/events"
	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"github.com/JobHunter-2025/skill-assessment-service/internal/session"
	"github.com/google/uuid"
)

// Grace added to the redis marker TTL so the marker outlives a slow timeout
// sweep instead of the other way around.
const activeMarkerGrace = 5 * time.Minute

// AttemptService drives a holder's timed attempt: the session engine holds
// the rules, this service rebuilds sessions from storage per call, persists
// mutations and performs the single terminal write after grading.
type AttemptService interface {
	Start(ctx context.Context, quizID uint, holderID string) (*models.Attempt, error)
	SubmitAnswer(ctx context.Context, attemptID string, holderID string, questionID uint, value session.AnswerValue) error
	Submit(ctx context.Context, attemptID string, holderID string) (*models.Attempt, error)
	GetProgress(ctx context.Context, attemptID string, holderID string) (*session.Progress, error)
	GetByID(ctx context.Context, attemptID string, holderID string) (*models.Attempt, error)
	GetResult(ctx context.Context, quizID uint, holderID string) (*models.Attempt, error)
	DeleteAttempt(ctx context.Context, quizID uint, holderID string) error
	HandleTimeouts(ctx context.Context, now time.Time) (int, error)
}

type attemptService struct {
	repo      repositories.Repository
	active    cache.ActiveAttemptCache
	publisher events.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewAttemptService(repo repositories.Repository, active cache.ActiveAttemptCache, publisher events.EventPublisher, logger *slog.Logger) AttemptService {
	return &attemptService{
		repo:      repo,
		active:    active,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Start opens a new attempt for the (holder, quiz) pair. Any existing row
// for the pair, in progress or already graded, blocks the start; a retake
// needs DeleteAttempt first.
func (s *attemptService) Start(ctx context.Context, quizID uint, holderID string) (*models.Attempt, error) {
	s.logger.Info("Starting attempt", "quiz_id", quizID, "holder_id", holderID)

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrQuizEmpty
	}

	unresolved, err := s.repo.Attempt().HasUnresolved(ctx, holderID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing attempts: %w", err)
	}
	if unresolved {
		return nil, ErrAttemptAlreadyActive
	}

	now := s.now()
	attempt := &models.Attempt{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		HolderID:  holderID,
		Status:    models.AttemptStatusInProgress,
		StartedAt: now,
		Deadline:  now.Add(time.Duration(quiz.DurationSeconds) * time.Second),
		Answers:   []byte("{}"),
	}

	// The redis marker catches racing starts across instances before the
	// unique index would.
	ttl := time.Until(attempt.Deadline) + activeMarkerGrace
	marked, err := s.active.MarkActive(ctx, holderID, quizID, attempt.ID, ttl)
	if err != nil {
		s.logger.Warn("Active-attempt marker unavailable, relying on store check", "error", err)
	} else if !marked {
		return nil, ErrAttemptAlreadyActive
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		if clearErr := s.active.Clear(ctx, holderID, quizID); clearErr != nil {
			s.logger.Warn("Failed to clear marker after create failure", "error", clearErr)
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	if err := s.publisher.PublishAttemptEvent(ctx,
		events.NewAttemptStartedEvent(attempt.ID, quizID, holderID, attempt.StartedAt, attempt.Deadline)); err != nil {
		s.logger.Error("Failed to publish attempt started event", "attempt_id", attempt.ID, "error", err)
	}

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"deadline", attempt.Deadline)

	return attempt, nil
}

// SubmitAnswer records one answer value for an in-progress attempt. The
// deadline is checked first: a late call finalizes the expired attempt and
// reports the expiry instead of accepting the write.
func (s *attemptService) SubmitAnswer(ctx context.Context, attemptID string, holderID string, questionID uint, value session.AnswerValue) error {
	attempt, sess, err := s.loadSession(ctx, attemptID, holderID)
	if err != nil {
		return err
	}

	if sess.Tick(s.now()) {
		if err := s.finalize(ctx, attempt, sess); err != nil {
			return err
		}
		return ErrAttemptTimeExpired
	}

	if err := sess.SetAnswer(questionID, value); err != nil {
		return err
	}

	if err := s.persistAnswers(ctx, attempt, sess); err != nil {
		return fmt.Errorf("failed to persist answer: %w", err)
	}

	s.logger.Debug("Answer recorded",
		"attempt_id", attemptID,
		"question_id", questionID)

	return nil
}

// Submit finalizes an in-progress attempt: SUBMITTED transition, grading,
// terminal write, marker cleanup and result event.
func (s *attemptService) Submit(ctx context.Context, attemptID string, holderID string) (*models.Attempt, error) {
	attempt, sess, err := s.loadSession(ctx, attemptID, holderID)
	if err != nil {
		return nil, err
	}

	if sess.Tick(s.now()) {
		if err := s.finalize(ctx, attempt, sess); err != nil {
			return nil, err
		}
		return nil, ErrAttemptTimeExpired
	}

	if err := sess.Submit(); err != nil {
		return nil, err
	}

	if err := s.finalize(ctx, attempt, sess); err != nil {
		return nil, err
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attemptID,
		"score", attempt.Score)

	return attempt, nil
}

func (s *attemptService) GetProgress(ctx context.Context, attemptID string, holderID string) (*session.Progress, error) {
	_, sess, err := s.loadSession(ctx, attemptID, holderID)
	if err != nil {
		return nil, err
	}
	progress := sess.Progress()
	return &progress, nil
}

func (s *attemptService) GetByID(ctx context.Context, attemptID string, holderID string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.HolderID != holderID {
		return nil, ErrAttemptNotOwned
	}
	return attempt, nil
}

// GetResult returns the graded attempt for the pair, if any.
func (s *attemptService) GetResult(ctx context.Context, quizID uint, holderID string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByPair(ctx, holderID, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.GradedAt == nil {
		return nil, ErrAttemptNotGraded
	}
	return attempt, nil
}

// DeleteAttempt removes the pair's attempt row and marker, enabling a
// retake.
func (s *attemptService) DeleteAttempt(ctx context.Context, quizID uint, holderID string) error {
	if err := s.repo.Attempt().DeleteByPair(ctx, holderID, quizID); err != nil {
		return fmt.Errorf("failed to delete attempt: %w", err)
	}
	if err := s.active.Clear(ctx, holderID, quizID); err != nil {
		s.logger.Warn("Failed to clear active-attempt marker", "error", err)
	}

	s.logger.Info("Attempt deleted for retake", "quiz_id", quizID, "holder_id", holderID)
	return nil
}

// HandleTimeouts sweeps in-progress attempts and finalizes the expired
// ones. Safe to run from any number of schedulers: expiry happens at most
// once per attempt. Returns how many attempts were expired this pass.
func (s *attemptService) HandleTimeouts(ctx context.Context, now time.Time) (int, error) {
	attempts, err := s.repo.Attempt().GetInProgress(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list in-progress attempts: %w", err)
	}

	expired := 0
	for _, attempt := range attempts {
		sess, err := s.rebuildSession(ctx, attempt)
		if err != nil {
			s.logger.Error("Failed to rebuild session for timeout check",
				"attempt_id", attempt.ID, "error", err)
			continue
		}
		if !sess.Tick(now) {
			continue
		}
		if err := s.finalize(ctx, attempt, sess); err != nil {
			s.logger.Error("Failed to finalize expired attempt",
				"attempt_id", attempt.ID, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("Timeout sweep finalized attempts", "count", expired)
	}
	return expired, nil
}
