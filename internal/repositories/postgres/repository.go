package postgres

import (
	"context"

	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db       *gorm.DB
	question repositories.QuestionRepository
	quiz     repositories.QuizRepository
	attempt  repositories.AttemptRepository
}

// NewRepository wires the gorm-backed repositories over one connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		question: NewQuestionPostgreSQL(db),
		quiz:     NewQuizPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *repository) Attempt() repositories.AttemptRepository   { return r.attempt }

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
