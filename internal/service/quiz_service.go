package service

import (
	"context"
	"errors"
	"fmt"
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/scoring"
	"skillnest_backend/internal/util"
	"skillnest_backend/pkg/logger"
	"skillnest_backend/pkg/monitoring"
	"skillnest_backend/pkg/tracing"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizStore interface {
	Create(quiz *model.Quiz) error
	FindByID(ctx context.Context, id uint) (*model.Quiz, error)
	ListByCourse(courseID uint) ([]model.Quiz, error)
	ListAll() ([]model.Quiz, error)
	Update(quiz *model.Quiz) error
	Delete(id uint) error
}

// AttemptStore 只追加
type AttemptStore interface {
	Create(ctx context.Context, attempt *model.Attempt) error
	ListByQuizAndStudent(ctx context.Context, quizID, studentID uint) ([]model.Attempt, error)
}

type CourseFinder interface {
	FindByID(id uint) (*model.Course, error)
}

type QuizService struct {
	Quizzes  QuizStore
	Attempts AttemptStore
	Courses  CourseFinder
	Policy   *scoring.PolicyHolder
}

func NewQuizService(quizzes QuizStore, attempts AttemptStore, courses CourseFinder, policy *scoring.PolicyHolder) *QuizService {
	return &QuizService{
		Quizzes:  quizzes,
		Attempts: attempts,
		Courses:  courses,
		Policy:   policy,
	}
}

type QuizInput struct {
	Title     string           `json:"title"`
	CourseID  uint             `json:"courseId"`
	Questions []model.Question `json:"questions"`
}

// AttemptResult 提交结果：score/total 为原始计数，其余为百分制评分
type AttemptResult struct {
	AttemptID  uint    `json:"attemptId"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage int     `json:"percentage"`
	Penalty    float64 `json:"penalty"`
	Passed     bool    `json:"passed"`
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Skipped    int     `json:"skipped"`
}

func (s *QuizService) findCourse(id uint) (*model.Course, error) {
	course, err := s.Courses.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, id uint) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// authorize 测验所属课程的教师或管理员
func (s *QuizService) authorize(actor Actor, courseID uint) error {
	course, err := s.findCourse(courseID)
	if err != nil {
		return err
	}
	if !actor.canManage(course) {
		return util.ErrNotOwner
	}
	return nil
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", util.ErrValidation, err)
}

func (s *QuizService) CreateQuiz(actor Actor, in QuizInput) (*model.Quiz, error) {
	if err := s.authorize(actor, in.CourseID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrValidation)
	}
	if err := scoring.ValidateQuestions(in.Questions); err != nil {
		return nil, validationError(err)
	}

	quiz := &model.Quiz{
		Title:     strings.TrimSpace(in.Title),
		CourseID:  in.CourseID,
		Questions: in.Questions,
	}
	if err := s.Quizzes.Create(quiz); err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz created",
		zap.Uint("quizId", quiz.ID),
		zap.Uint("courseId", quiz.CourseID),
		zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

func (s *QuizService) ListByCourse(courseID uint) ([]model.Quiz, error) {
	return s.Quizzes.ListByCourse(courseID)
}

func (s *QuizService) ListAll() ([]model.Quiz, error) {
	return s.Quizzes.ListAll()
}

// UpdateQuiz 空字段保持原值；更换课程时需同时拥有目标课程
func (s *QuizService) UpdateQuiz(ctx context.Context, actor Actor, id uint, in QuizInput) (*model.Quiz, error) {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, quiz.CourseID); err != nil {
		return nil, err
	}

	if in.CourseID != 0 && in.CourseID != quiz.CourseID {
		if err := s.authorize(actor, in.CourseID); err != nil {
			return nil, err
		}
		quiz.CourseID = in.CourseID
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		quiz.Title = t
	}
	if len(in.Questions) > 0 {
		if err := scoring.ValidateQuestions(in.Questions); err != nil {
			return nil, validationError(err)
		}
		quiz.Questions = in.Questions
	}

	if err := s.Quizzes.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(ctx context.Context, actor Actor, id uint) error {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, quiz.CourseID); err != nil {
		return err
	}
	return s.Quizzes.Delete(id)
}

// SubmitAttempt 判分并追加一条 Attempt 记录
func (s *QuizService) SubmitAttempt(ctx context.Context, quizID, studentID uint, answers []*int) (result *AttemptResult, err error) {
	ctx, span := tracing.Start(ctx, "QuizService.SubmitAttempt",
		attribute.Int64("quiz.id", int64(quizID)),
		attribute.Int64("student.id", int64(studentID)))
	defer func() { tracing.EndSpan(span, err) }()

	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	questions := []model.Question(quiz.Questions)
	if err := scoring.ValidateAnswers(questions, answers); err != nil {
		return nil, validationError(err)
	}

	report, err := scoring.Grade(questions, answers, s.Policy.Get())
	if err != nil {
		return nil, fmt.Errorf("grade quiz %d: %w", quizID, err)
	}

	recorded := make([]model.AttemptAnswer, len(answers))
	for i, a := range answers {
		recorded[i] = model.AttemptAnswer{QuestionIndex: i, ChosenOptionIndex: a}
	}

	attempt := &model.Attempt{
		QuizID:      quizID,
		StudentID:   studentID,
		Answers:     recorded,
		Score:       report.Raw.Score,
		Total:       report.Raw.Total,
		Percentage:  report.Weighted.Score,
		Penalty:     report.Weighted.Penalty,
		Passed:      report.Weighted.Passed,
		SubmittedAt: time.Now(),
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}

	monitoring.ObserveAttempt(attempt.Passed)
	span.SetAttributes(
		attribute.Int("attempt.score", attempt.Score),
		attribute.Int("attempt.percentage", attempt.Percentage))
	logger.Log.Info("Quiz attempt submitted",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("quizId", quizID),
		zap.Uint("studentId", studentID),
		zap.Int("score", attempt.Score),
		zap.Int("total", attempt.Total),
		zap.Int("percentage", attempt.Percentage))

	return &AttemptResult{
		AttemptID:  attempt.ID,
		Score:      attempt.Score,
		Total:      attempt.Total,
		Percentage: attempt.Percentage,
		Penalty:    attempt.Penalty,
		Passed:     attempt.Passed,
		Correct:    report.Weighted.Correct,
		Incorrect:  report.Weighted.Incorrect,
		Skipped:    report.Weighted.Skipped,
	}, nil
}

// ListAttempts 学生本人的历次提交，最新在前
func (s *QuizService) ListAttempts(ctx context.Context, quizID, studentID uint) ([]model.Attempt, error) {
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.Attempts.ListByQuizAndStudent(ctx, quizID, studentID)
}
