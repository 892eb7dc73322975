package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiSelect  QuestionType = "multi_select"
	FreeText     QuestionType = "free_text"
)

// AutoGradable reports whether correctness can be decided by exact or set
// comparison, without human review.
func (t QuestionType) AutoGradable() bool {
	return t == SingleChoice || t == MultiSelect
}

// QuestionOption is one answer choice, stored inside the options JSON column.
type QuestionOption struct {
	Label string `json:"label" validate:"required,len=1,uppercase"`
	Text  string `json:"text" validate:"required"`
}

type Question struct {
	ID      uint         `json:"id" gorm:"primaryKey"`
	Content string       `json:"content" gorm:"type:text;not null" validate:"required"`
	Type    QuestionType `json:"type" gorm:"not null;size:20;index" validate:"required,question_type"`

	// Options is []QuestionOption; empty for free_text questions.
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`

	// CorrectAnswer holds a single label for single_choice, a label array
	// for multi_select, reference text (or null) for free_text.
	CorrectAnswer datatypes.JSON `json:"correct_answer" gorm:"type:jsonb"`

	Points   int    `json:"points" gorm:"not null;default:1" validate:"required,min=1"`
	SkillTag string `json:"skill_tag" gorm:"not null;size:100;index" validate:"required,max=100"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}
