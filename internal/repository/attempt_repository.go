package repository

import (
	"context"
	"skillnest_backend/internal/model"

	"gorm.io/gorm"
)

// AttemptRepository 只追加，不提供修改接口
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *AttemptRepository) ListByQuizAndStudent(ctx context.Context, quizID, studentID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("submitted_at DESC, id DESC").
		Find(&attempts).Error
	return attempts, err
}
