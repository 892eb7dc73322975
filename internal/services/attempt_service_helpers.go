package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JobHunter-2025/skill-assessment-service/internal/events"
	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"github.com/JobHunter-2025/skill-assessment-service/internal/session"
)

// loadSession fetches the attempt, checks ownership and liveness, and
// rebuilds the in-memory session from the persisted state.
func (s *attemptService) loadSession(ctx context.Context, attemptID string, holderID string) (*models.Attempt, *session.Session, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrAttemptNotFound
		}
		return nil, nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.HolderID != holderID {
		return nil, nil, ErrAttemptNotOwned
	}
	if attempt.Status.Terminal() {
		return nil, nil, ErrAttemptAlreadySubmitted
	}

	sess, err := s.rebuildSession(ctx, attempt)
	if err != nil {
		return nil, nil, err
	}
	return attempt, sess, nil
}

func (s *attemptService) rebuildSession(ctx context.Context, attempt *models.Attempt) (*session.Session, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz for attempt: %w", err)
	}

	snapshot, err := buildQuizSnapshot(quiz)
	if err != nil {
		return nil, err
	}

	answers, err := decodeAnswers(attempt.Answers)
	if err != nil {
		return nil, err
	}

	return session.Resume(snapshot, attempt.StartedAt, answers), nil
}

// buildQuizSnapshot converts the stored quiz into the session engine's
// immutable view, decoding each question's correct answer by type.
func buildQuizSnapshot(quiz *models.Quiz) (*session.Quiz, error) {
	snapshot := &session.Quiz{
		ID:              quiz.ID,
		DurationSeconds: quiz.DurationSeconds,
	}

	for _, ref := range quiz.Questions {
		q := ref.Question
		sq := session.Question{
			ID:     q.ID,
			Type:   q.Type,
			Points: q.Points,
		}
		switch q.Type {
		case models.SingleChoice:
			if err := json.Unmarshal(q.CorrectAnswer, &sq.CorrectLabel); err != nil {
				return nil, fmt.Errorf("question %d: malformed correct answer: %w", q.ID, err)
			}
		case models.MultiSelect:
			if err := json.Unmarshal(q.CorrectAnswer, &sq.CorrectLabels); err != nil {
				return nil, fmt.Errorf("question %d: malformed correct answer: %w", q.ID, err)
			}
		}
		snapshot.Questions = append(snapshot.Questions, sq)
	}
	return snapshot, nil
}

func decodeAnswers(raw []byte) (map[uint]session.AnswerValue, error) {
	answers := make(map[uint]session.AnswerValue)
	if len(raw) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("malformed stored answers: %w", err)
	}
	return answers, nil
}

func (s *attemptService) persistAnswers(ctx context.Context, attempt *models.Attempt, sess *session.Session) error {
	encoded, err := json.Marshal(sess.Answers())
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	attempt.Answers = encoded
	return s.repo.Attempt().Update(ctx, attempt)
}

// finalize grades a terminal session and performs the single terminal
// write, then clears the active marker and publishes the result event.
func (s *attemptService) finalize(ctx context.Context, attempt *models.Attempt, sess *session.Session) error {
	now := s.now()
	result, err := sess.Grade(now)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	reviewIDs, err := json.Marshal(result.NeedsManualReview)
	if err != nil {
		return fmt.Errorf("failed to encode review ids: %w", err)
	}

	switch sess.State() {
	case session.StateSubmitted:
		attempt.Status = models.AttemptStatusSubmitted
		attempt.SubmittedAt = &now
	case session.StateExpired:
		attempt.Status = models.AttemptStatusExpired
	}

	attempt.Answers = encoded
	attempt.Score = &result.Score
	attempt.CorrectAnswerCount = result.CorrectAnswerCount
	attempt.TotalAutoGradable = result.TotalAutoGradable
	attempt.ManualReviewIDs = reviewIDs
	attempt.GradedAt = &result.GradedAt

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return fmt.Errorf("failed to persist graded attempt: %w", err)
	}

	if err := s.active.Clear(ctx, attempt.HolderID, attempt.QuizID); err != nil {
		s.logger.Warn("Failed to clear active-attempt marker",
			"attempt_id", attempt.ID, "error", err)
	}

	if err := s.publisher.PublishAttemptEvent(ctx, events.NewAttemptGradedEvent(
		attempt.ID,
		attempt.QuizID,
		attempt.HolderID,
		result.Score,
		len(result.NeedsManualReview),
		result.GradedAt,
	)); err != nil {
		s.logger.Error("Failed to publish attempt graded event",
			"attempt_id", attempt.ID, "error", err)
	}

	return nil
}
