package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAttemptStarted EventType = "attempt.started"
	EventAttemptGraded  EventType = "attempt.graded"
)

// AttemptEvent is the envelope published to the result topic. Downstream
// consumers (notifications, analytics) key off Type and read Data.
type AttemptEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// NewAttemptStartedEvent announces a fresh attempt with its deadline.
func NewAttemptStartedEvent(attemptID string, quizID uint, holderID string, startedAt, deadline time.Time) *AttemptEvent {
	return &AttemptEvent{
		ID:        uuid.NewString(),
		Type:      EventAttemptStarted,
		Source:    "skill-assessment-service",
		Version:   "1.0",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"attempt_id": attemptID,
			"quiz_id":    quizID,
			"holder_id":  holderID,
			"started_at": startedAt,
			"deadline":   deadline,
		},
	}
}

// NewAttemptGradedEvent carries the grading outcome after the terminal write.
func NewAttemptGradedEvent(attemptID string, quizID uint, holderID string, score float64, manualReview int, gradedAt time.Time) *AttemptEvent {
	return &AttemptEvent{
		ID:        uuid.NewString(),
		Type:      EventAttemptGraded,
		Source:    "skill-assessment-service",
		Version:   "1.0",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"attempt_id":          attemptID,
			"quiz_id":             quizID,
			"holder_id":           holderID,
			"score":               score,
			"manual_review_count": manualReview,
			"graded_at":           gradedAt,
		},
	}
}
