package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/repository"
	"skillnest_backend/internal/util"
	"skillnest_backend/pkg/logger"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 处理用户相关的业务逻辑
type UserService struct {
	UserRepo   *repository.UserRepository
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
}

func NewUserService(userRepo *repository.UserRepository, courseRepo *repository.CourseRepository, storage *StorageService) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		CourseRepo: courseRepo,
		Storage:    storage,
	}
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate 为空的字段保持原值
type ProfileUpdate struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

func (s *UserService) UpdateProfile(id uint, req ProfileUpdate) (*model.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	user.UpdatedAt = time.Now()

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(id uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return util.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	user.UpdatedAt = time.Now()
	return s.UserRepo.Update(user)
}

// UploadAvatar 对象名 avatars/{userId}/{uuid}{ext}
func (s *UserService) UploadAvatar(ctx context.Context, id uint, filename string, reader io.Reader, size int64, contentType string) (*model.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("avatars/%d/%s%s", id, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.Storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	user.AvatarURL = url
	user.UpdatedAt = time.Now()
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Log.Info("Avatar uploaded", zap.Uint("userId", id), zap.String("object", objectName))
	return user, nil
}

func (s *UserService) ListEnrollments(studentID uint) ([]model.Course, error) {
	return s.CourseRepo.ListEnrolledCourses(studentID)
}

// GetUsers 获取用户列表，支持分页和筛选
func (s *UserService) GetUsers(filter repository.UserFilter) ([]model.User, int64, error) {
	if filter.Page < 1 {
		filter.Page = util.DefaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = util.DefaultLimit
	}
	if filter.Limit > util.MaxLimit {
		filter.Limit = util.MaxLimit
	}
	return s.UserRepo.List(filter)
}

func (s *UserService) DeleteUser(id uint) error {
	if _, err := s.GetUserByID(id); err != nil {
		return err
	}
	return s.UserRepo.Delete(id)
}
