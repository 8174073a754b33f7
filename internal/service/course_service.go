package service

import (
	"errors"
	"fmt"
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/repository"
	"skillnest_backend/internal/util"
	"skillnest_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
}

func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{CourseRepo: courseRepo}
}

type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Published   *bool  `json:"published"`
}

type LessonInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	VideoURL string `json:"videoUrl"`
	Order    int    `json:"order"`
}

func (s *CourseService) ListPublished(keyword string) ([]model.Course, error) {
	return s.CourseRepo.ListPublished(strings.TrimSpace(keyword))
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// managedCourse 课程存在且调用者为课程教师或管理员
func (s *CourseService) managedCourse(actor Actor, id uint) (*model.Course, error) {
	course, err := s.GetCourse(id)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(course) {
		return nil, util.ErrNotOwner
	}
	return course, nil
}

func (s *CourseService) CreateCourse(actor Actor, in CourseInput) (*model.Course, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", util.ErrValidation)
	}

	course := &model.Course{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		TeacherID:   actor.UserID,
	}
	if in.Published != nil {
		course.Published = *in.Published
	}

	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	logger.Log.Info("Course created", zap.Uint("courseId", course.ID), zap.Uint("teacherId", actor.UserID))
	return course, nil
}

func (s *CourseService) UpdateCourse(actor Actor, id uint, in CourseInput) (*model.Course, error) {
	course, err := s.managedCourse(actor, id)
	if err != nil {
		return nil, err
	}

	if t := strings.TrimSpace(in.Title); t != "" {
		course.Title = t
	}
	if in.Description != "" {
		course.Description = in.Description
	}
	if in.Category != "" {
		course.Category = in.Category
	}
	if in.Published != nil {
		course.Published = *in.Published
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(actor Actor, id uint) error {
	if _, err := s.managedCourse(actor, id); err != nil {
		return err
	}
	return s.CourseRepo.Delete(id)
}

func (s *CourseService) AddLesson(actor Actor, courseID uint, in LessonInput) (*model.Lesson, error) {
	if _, err := s.managedCourse(actor, courseID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: lesson title is required", util.ErrValidation)
	}

	lesson := &model.Lesson{
		CourseID: courseID,
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		VideoURL: in.VideoURL,
		Order:    in.Order,
	}
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// ListLessons 仅选课学生、课程教师与管理员可见
func (s *CourseService) ListLessons(actor Actor, courseID uint) ([]model.Lesson, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}

	if !actor.canManage(course) {
		enrolled, err := s.CourseRepo.IsEnrolled(courseID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, util.ErrNotEnrolled
		}
	}

	return s.CourseRepo.ListLessons(courseID)
}

// Enroll 返回课程当前全部学生 ID
func (s *CourseService) Enroll(actor Actor, courseID uint) ([]uint, error) {
	if _, err := s.GetCourse(courseID); err != nil {
		return nil, err
	}

	created, err := s.CourseRepo.Enroll(courseID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, util.ErrAlreadyEnrolled
	}

	logger.Log.Info("Student enrolled", zap.Uint("courseId", courseID), zap.Uint("studentId", actor.UserID))
	return s.CourseRepo.ListStudentIDs(courseID)
}
