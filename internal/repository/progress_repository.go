package repository

import (
	"context"
	"skillnest_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func preloadLessons(db *gorm.DB) *gorm.DB {
	return db.Preload("CompletedLessons", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	})
}

// FindOne 不存在时返回 gorm.ErrRecordNotFound
func (r *ProgressRepository) FindOne(ctx context.Context, studentID, courseID uint) (*model.Progress, error) {
	var p model.Progress
	err := preloadLessons(r.DB.WithContext(ctx)).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&p).Error
	return &p, err
}

// FindOrCreate 依赖 (student_id, course_id) 唯一索引，并发首次调用也只会产生一条记录
func (r *ProgressRepository) FindOrCreate(ctx context.Context, studentID, courseID uint) (*model.Progress, error) {
	p := model.Progress{StudentID: studentID, CourseID: courseID}
	if err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&p).Error; err != nil {
		return nil, err
	}
	return r.FindOne(ctx, studentID, courseID)
}

// AddLesson 集合语义，重复添加返回 added=false
func (r *ProgressRepository) AddLesson(ctx context.Context, progressID, lessonID uint) (bool, error) {
	now := time.Now()
	pl := model.ProgressLesson{ProgressID: progressID, LessonID: lessonID, CompletedAt: now}

	var added bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pl)
		if res.Error != nil {
			return res.Error
		}
		added = res.RowsAffected > 0
		if !added {
			return nil
		}
		return tx.Model(&model.Progress{}).
			Where("id = ?", progressID).
			Update("updated_at", now).Error
	})
	return added, err
}
