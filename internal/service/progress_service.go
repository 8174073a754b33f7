package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/util"
	"skillnest_backend/pkg/logger"
	"skillnest_backend/pkg/monitoring"
	"skillnest_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressStore interface {
	FindOne(ctx context.Context, studentID, courseID uint) (*model.Progress, error)
	FindOrCreate(ctx context.Context, studentID, courseID uint) (*model.Progress, error)
	AddLesson(ctx context.Context, progressID, lessonID uint) (bool, error)
}

type LessonStore interface {
	FindByID(id uint) (*model.Course, error)
	FindLesson(id uint) (*model.Lesson, error)
	CountLessonsCached(ctx context.Context, courseID uint) (int64, error)
	ExistingLessonIDs(ctx context.Context, courseID uint, ids []uint) ([]uint, error)
}

type ProgressService struct {
	Progress ProgressStore
	Lessons  LessonStore
}

func NewProgressService(progress ProgressStore, lessons LessonStore) *ProgressService {
	return &ProgressService{Progress: progress, Lessons: lessons}
}

// ProgressSummary 完成度按当前课时总数实时计算
type ProgressSummary struct {
	CourseID         uint   `json:"courseId"`
	CompletedCount   int    `json:"completedCount"`
	TotalCount       int    `json:"totalCount"`
	Percentage       int    `json:"percentage"`
	CompletedLessons []uint `json:"completedLessons"`
}

// ProgressView MarkComplete 的返回
type ProgressView struct {
	ID               uint   `json:"id"`
	StudentID        uint   `json:"studentId"`
	CourseID         uint   `json:"courseId"`
	CompletedLessons []uint `json:"completedLessons"`
}

func viewOf(p *model.Progress) *ProgressView {
	return &ProgressView{
		ID:               p.ID,
		StudentID:        p.StudentID,
		CourseID:         p.CourseID,
		CompletedLessons: p.LessonIDs(),
	}
}

// MarkComplete 幂等：重复完成同一课时不改变结果
func (s *ProgressService) MarkComplete(ctx context.Context, studentID, courseID, lessonID uint) (view *ProgressView, err error) {
	ctx, span := tracing.Start(ctx, "ProgressService.MarkComplete",
		attribute.Int64("student.id", int64(studentID)),
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int64("lesson.id", int64(lessonID)))
	defer func() { tracing.EndSpan(span, err) }()

	lesson, err := s.Lessons.FindLesson(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if lesson.CourseID != courseID {
		return nil, fmt.Errorf("%w: lesson %d does not belong to course %d", util.ErrLessonNotFound, lessonID, courseID)
	}

	progress, err := s.Progress.FindOrCreate(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	added, err := s.Progress.AddLesson(ctx, progress.ID, lessonID)
	if err != nil {
		return nil, err
	}
	if !added {
		return viewOf(progress), nil
	}

	monitoring.ObserveLessonCompletion()
	logger.Log.Info("Lesson completed",
		zap.Uint("studentId", studentID),
		zap.Uint("courseId", courseID),
		zap.Uint("lessonId", lessonID))

	progress, err = s.Progress.FindOne(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return viewOf(progress), nil
}

// GetProgress 只读，不会创建进度记录
func (s *ProgressService) GetProgress(ctx context.Context, studentID, courseID uint) (summary *ProgressSummary, err error) {
	ctx, span := tracing.Start(ctx, "ProgressService.GetProgress",
		attribute.Int64("student.id", int64(studentID)),
		attribute.Int64("course.id", int64(courseID)))
	defer func() { tracing.EndSpan(span, err) }()

	if _, err := s.Lessons.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	total, err := s.Lessons.CountLessonsCached(ctx, courseID)
	if err != nil {
		return nil, err
	}

	summary = &ProgressSummary{
		CourseID:         courseID,
		TotalCount:       int(total),
		CompletedLessons: []uint{},
	}

	// 没有课时的课程视为已完成
	if total == 0 {
		summary.Percentage = 100
		return summary, nil
	}

	progress, err := s.Progress.FindOne(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, nil
		}
		return nil, err
	}

	// 已删除的课时不计入完成数，记录本身保持不变
	completed := progress.LessonIDs()
	existing, err := s.Lessons.ExistingLessonIDs(ctx, courseID, completed)
	if err != nil {
		return nil, err
	}
	summary.CompletedLessons = keepExisting(completed, existing)
	summary.CompletedCount = len(summary.CompletedLessons)
	summary.Percentage = completionPercent(summary.CompletedCount, summary.TotalCount)
	return summary, nil
}

// completionPercent 课时数缓存短暂滞后时 completed 可能大于 total，结果上限 100
func completionPercent(completed, total int) int {
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// keepExisting 按完成顺序保留仍存在的课时
func keepExisting(completed, existing []uint) []uint {
	alive := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		alive[id] = struct{}{}
	}
	out := make([]uint, 0, len(existing))
	for _, id := range completed {
		if _, ok := alive[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
