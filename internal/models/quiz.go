package models

import (
	"time"

	"gorm.io/gorm"
)

// Quiz is an ordered set of questions with a time limit. Quizzes are
// immutable for the lifetime of a running attempt: sessions grade against
// the question set loaded at start, never against later edits.
type Quiz struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Title           string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	SkillTag        string `json:"skill_tag" gorm:"not null;size:100;index" validate:"required,max=100"`
	DurationSeconds int    `json:"duration_seconds" gorm:"not null" validate:"required,min=1"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID"`
}

// QuizQuestion links a question into a quiz at a fixed position.
type QuizQuestion struct {
	QuizID     uint `json:"quiz_id" gorm:"primaryKey"`
	QuestionID uint `json:"question_id" gorm:"primaryKey"`
	Position   int  `json:"position" gorm:"not null"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
