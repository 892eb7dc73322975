package session

import (
	"math"
	"time"

	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
)

// AttemptResult is the graded outcome of one session, persisted by the
// attempt store as a single terminal write.
type AttemptResult struct {
	QuizID             uint                 `json:"quiz_id"`
	Answers            map[uint]AnswerValue `json:"answers"`
	Score              float64              `json:"score"` // [0,10], one decimal
	CorrectAnswerCount int                  `json:"correct_answer_count"`
	TotalAutoGradable  int                  `json:"total_auto_gradable"`
	NeedsManualReview  []uint               `json:"needs_manual_review,omitempty"`
	GradedAt           time.Time            `json:"graded_at"`
}

// Grade scores the session deterministically from (quiz, answers). Only
// single-choice and multi-select questions enter the score; free-text
// questions are excluded from the denominator and reported for manual
// review, never silently marked right or wrong.
//
// score = round(points earned / points possible * 10, 1 decimal), and 0.0
// when the quiz has no auto-gradable questions at all.
func (s *Session) Grade(now time.Time) (*AttemptResult, error) {
	if s.state != StateSubmitted && s.state != StateExpired {
		return nil, ErrNotGradable
	}

	result := &AttemptResult{
		QuizID:   s.quiz.ID,
		Answers:  s.Answers(),
		GradedAt: now,
	}

	earned, possible := 0, 0
	for _, q := range s.quiz.Questions {
		if !q.Type.AutoGradable() {
			result.NeedsManualReview = append(result.NeedsManualReview, q.ID)
			continue
		}
		result.TotalAutoGradable++
		possible += q.Points
		if answeredCorrectly(q, s.answers[q.ID]) {
			result.CorrectAnswerCount++
			earned += q.Points
		}
	}

	if possible > 0 {
		result.Score = roundScore(float64(earned) / float64(possible) * 10)
	}
	return result, nil
}

func answeredCorrectly(q Question, v AnswerValue) bool {
	switch q.Type {
	case models.SingleChoice:
		return v.Kind == AnswerSingle && v.Label == q.CorrectLabel
	case models.MultiSelect:
		return v.Kind == AnswerMulti && equalLabelSets(v.Labels, q.CorrectLabels)
	default:
		return false
	}
}

func roundScore(x float64) float64 {
	return math.Round(x*10) / 10
}
