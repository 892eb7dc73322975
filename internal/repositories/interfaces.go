package repositories

import (
	"context"
	"errors"

	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"gorm.io/gorm"
)

// QuestionFilters narrows question listings.
type QuestionFilters struct {
	Type     *models.QuestionType `json:"type"`
	SkillTag *string              `json:"skill_tag"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

// AttemptFilters narrows attempt listings.
type AttemptFilters struct {
	Status *models.AttemptStatus `json:"status"`
	QuizID *uint                 `json:"quiz_id"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// QuestionRepository stores parsed and manually entered questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	GetBySkill(ctx context.Context, skillTag string, filters QuestionFilters) ([]*models.Question, int64, error)
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	Delete(ctx context.Context, id uint) error
}

// QuizRepository stores quiz definitions with their ordered question refs.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, limit, offset int) ([]*models.Quiz, int64, error)
	Delete(ctx context.Context, id uint) error
}

// AttemptRepository stores attempts. At most one row exists per
// (holder, quiz) pair; HasUnresolved gates new starts and DeleteByPair
// enables retakes.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id string) (*models.Attempt, error)
	GetByPair(ctx context.Context, holderID string, quizID uint) (*models.Attempt, error)
	HasUnresolved(ctx context.Context, holderID string, quizID uint) (bool, error)
	Update(ctx context.Context, attempt *models.Attempt) error
	DeleteByPair(ctx context.Context, holderID string, quizID uint) error
	ListByHolder(ctx context.Context, holderID string, filters AttemptFilters) ([]*models.Attempt, int64, error)
	ListByQuiz(ctx context.Context, quizID uint, filters AttemptFilters) ([]*models.Attempt, int64, error)
	GetInProgress(ctx context.Context) ([]*models.Attempt, error)
}

// Repository aggregates the per-entity repositories.
type Repository interface {
	Question() QuestionRepository
	Quiz() QuizRepository
	Attempt() AttemptRepository
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err is the storage layer's record-missing
// condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
