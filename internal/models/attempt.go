package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
	AttemptStatusExpired    AttemptStatus = "expired"
)

// Terminal reports whether no further answer mutation is possible.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptStatusSubmitted || s == AttemptStatusExpired
}

// Attempt is one holder's timed run at one quiz, from start to graded
// result. At most one row exists per (holder, quiz) pair at a time; a
// retake requires deleting the prior row first.
type Attempt struct {
	ID       string        `json:"id" gorm:"primaryKey;size:36"` // UUID
	QuizID   uint          `json:"quiz_id" gorm:"not null;index:idx_attempts_holder_quiz,unique"`
	HolderID string        `json:"holder_id" gorm:"not null;size:255;index:idx_attempts_holder_quiz,unique"`
	Status   AttemptStatus `json:"status" gorm:"not null;size:20;index"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	Deadline    time.Time  `json:"deadline" gorm:"not null"`
	SubmittedAt *time.Time `json:"submitted_at"`

	// Answers is map[questionID]session answer value, frozen once the
	// attempt leaves in_progress.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	// Grading output, set by the single terminal write after grading.
	Score              *float64       `json:"score"`
	CorrectAnswerCount int            `json:"correct_answer_count"`
	TotalAutoGradable  int            `json:"total_auto_gradable"`
	ManualReviewIDs    datatypes.JSON `json:"manual_review_ids" gorm:"type:jsonb"` // []uint
	GradedAt           *time.Time     `json:"graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Quiz Quiz `json:"quiz" gorm:"foreignKey:QuizID"`
}

func (Attempt) TableName() string {
	return "attempts"
}
