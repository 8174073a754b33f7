package repository

import (
	"skillnest_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) Delete(id uint) error {
	return r.DB.Delete(&model.User{}, id).Error
}

// UserFilter 管理端用户列表筛选
type UserFilter struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

func (r *UserRepository) List(f UserFilter) ([]model.User, int64, error) {
	var (
		users []model.User
		total int64
	)

	db := r.DB.Model(&model.User{})
	if f.Role != "" {
		db = db.Where("role = ?", f.Role)
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		db = db.Where("(name LIKE ? OR email LIKE ?)", term, term)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	err := db.Order("id ASC").Offset(offset).Limit(f.Limit).Find(&users).Error
	return users, total, err
}
