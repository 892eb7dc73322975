package postgres

import (
	"context"

	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id string) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByPair(ctx context.Context, holderID string, quizID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Where("holder_id = ? AND quiz_id = ?", holderID, quizID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// HasUnresolved reports whether any attempt row exists for the pair. Both an
// in-progress attempt and a persisted result block a new start; a retake
// requires DeleteByPair first.
func (a AttemptPostgreSQL) HasUnresolved(ctx context.Context, holderID string, quizID uint) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("holder_id = ? AND quiz_id = ?", holderID, quizID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a AttemptPostgreSQL) Update(ctx context.Context, attempt *models.Attempt) error {
	return a.db.WithContext(ctx).Save(attempt).Error
}

func (a AttemptPostgreSQL) DeleteByPair(ctx context.Context, holderID string, quizID uint) error {
	return a.db.WithContext(ctx).
		Where("holder_id = ? AND quiz_id = ?", holderID, quizID).
		Delete(&models.Attempt{}).Error
}

func (a AttemptPostgreSQL) ListByHolder(ctx context.Context, holderID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Attempt{}).Where("holder_id = ?", holderID)
	return a.list(query, filters)
}

func (a AttemptPostgreSQL) ListByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Attempt{}).Where("quiz_id = ?", quizID)
	return a.list(query, filters)
}

func (a AttemptPostgreSQL) GetInProgress(ctx context.Context) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	err := a.db.WithContext(ctx).
		Where("status = ?", models.AttemptStatusInProgress).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) list(query *gorm.DB, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	var attempts []*models.Attempt
	var total int64

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("started_at DESC").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}
