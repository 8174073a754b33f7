package service

import (
	"errors"
	"fmt"
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/repository"
	"skillnest_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type ForumService struct {
	ThreadRepo *repository.ThreadRepository
	CourseRepo *repository.CourseRepository
}

func NewForumService(threadRepo *repository.ThreadRepository, courseRepo *repository.CourseRepository) *ForumService {
	return &ForumService{ThreadRepo: threadRepo, CourseRepo: courseRepo}
}

type ThreadInput struct {
	CourseID uint   `json:"courseId"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// CreateThread 仅课程教师、选课学生与管理员可发帖
func (s *ForumService) CreateThread(actor Actor, in ThreadInput) (*model.Thread, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("%w: title and body are required", util.ErrValidation)
	}

	course, err := s.CourseRepo.FindByID(in.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if !actor.canManage(course) {
		enrolled, err := s.CourseRepo.IsEnrolled(course.ID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, util.ErrNotEnrolled
		}
	}

	thread := &model.Thread{
		CourseID: course.ID,
		UserID:   actor.UserID,
		Title:    strings.TrimSpace(in.Title),
		Body:     in.Body,
	}
	if err := s.ThreadRepo.Create(thread); err != nil {
		return nil, err
	}
	return s.ThreadRepo.FindByID(thread.ID)
}

func (s *ForumService) ListByCourse(courseID uint) ([]model.Thread, error) {
	return s.ThreadRepo.ListByCourse(courseID)
}

// Reply 返回包含新回复的完整帖子
func (s *ForumService) Reply(actor Actor, threadID uint, body string) (*model.Thread, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: body is required", util.ErrValidation)
	}

	if _, err := s.ThreadRepo.FindByID(threadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrThreadNotFound
		}
		return nil, err
	}

	reply := &model.ThreadReply{ThreadID: threadID, UserID: actor.UserID, Body: body}
	if err := s.ThreadRepo.CreateReply(reply); err != nil {
		return nil, err
	}
	return s.ThreadRepo.FindByID(threadID)
}
