package repository

import (
	"skillnest_backend/internal/model"

	"gorm.io/gorm"
)

type ThreadRepository struct {
	DB *gorm.DB
}

func NewThreadRepository(db *gorm.DB) *ThreadRepository {
	return &ThreadRepository{DB: db}
}

func (r *ThreadRepository) Create(thread *model.Thread) error {
	return r.DB.Omit("User", "Replies").Create(thread).Error
}

func (r *ThreadRepository) FindByID(id uint) (*model.Thread, error) {
	var thread model.Thread
	err := r.DB.Preload("User").
		Preload("Replies", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Replies.User").
		First(&thread, id).Error
	return &thread, err
}

// ListByCourse 附带作者与回复
func (r *ThreadRepository) ListByCourse(courseID uint) ([]model.Thread, error) {
	var threads []model.Thread
	err := r.DB.Preload("User").
		Preload("Replies", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Replies.User").
		Where("course_id = ?", courseID).
		Order("id DESC").
		Find(&threads).Error
	return threads, err
}

func (r *ThreadRepository) CreateReply(reply *model.ThreadReply) error {
	return r.DB.Omit("User").Create(reply).Error
}
