package repository

import (
	"context"
	"errors"
	"fmt"
	"skillnest_backend/internal/model"
	"skillnest_backend/pkg/logger"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LessonCountTTL 课时数缓存有效期，增删课时时会主动失效
const LessonCountTTL = 10 * time.Minute

// 课时数缓存按版本号分键，失效时只递增版本号，旧版本的回填不会再被读到
func lessonCountVersionKey(courseID uint) string {
	return fmt.Sprintf("course:%d:lesson_count_ver", courseID)
}

func lessonCountKey(courseID uint, version int64) string {
	return fmt.Sprintf("course:%d:lesson_count:v%d", courseID, version)
}

// CourseRepository 课程、课时与选课记录。Redis 为空时不使用缓存
type CourseRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewCourseRepository(db *gorm.DB, rdb *redis.Client) *CourseRepository {
	return &CourseRepository{DB: db, Redis: rdb}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Teacher").First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Omit("Teacher").Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, id).Error
	})
	if err == nil {
		r.invalidateLessonCount(context.Background(), id)
	}
	return err
}

// ListPublished 关键字匹配标题或简介
func (r *CourseRepository) ListPublished(keyword string) ([]model.Course, error) {
	var courses []model.Course
	db := r.DB.Preload("Teacher").Where("published = ?", true)
	if keyword != "" {
		term := "%" + keyword + "%"
		db = db.Where("(title LIKE ? OR description LIKE ?)", term, term)
	}
	err := db.Order("id DESC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) CreateLesson(lesson *model.Lesson) error {
	if err := r.DB.Create(lesson).Error; err != nil {
		return err
	}
	r.invalidateLessonCount(context.Background(), lesson.CourseID)
	return nil
}

func (r *CourseRepository) FindLesson(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

func (r *CourseRepository) DeleteLesson(lesson *model.Lesson) error {
	if err := r.DB.Delete(lesson).Error; err != nil {
		return err
	}
	r.invalidateLessonCount(context.Background(), lesson.CourseID)
	return nil
}

func (r *CourseRepository) ListLessons(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order("id ASC").
		Find(&lessons).Error
	return lessons, err
}

// CountLessons 实时统计课时数，不经过缓存
func (r *CourseRepository) CountLessons(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// ExistingLessonIDs 返回 ids 中仍属于该课程的课时
func (r *CourseRepository) ExistingLessonIDs(ctx context.Context, courseID uint, ids []uint) ([]uint, error) {
	out := []uint{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).
		Where("course_id = ? AND id IN ?", courseID, ids).
		Pluck("id", &out).Error
	return out, err
}

// CountLessonsCached 先读 Redis，未命中时回源并回填
func (r *CourseRepository) CountLessonsCached(ctx context.Context, courseID uint) (int64, error) {
	if r.Redis == nil {
		return r.CountLessons(ctx, courseID)
	}

	// 版本号必须在回源之前读取
	version, err := r.Redis.Get(ctx, lessonCountVersionKey(courseID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Log.Warn("Lesson count cache read failed", zap.Uint("courseId", courseID), zap.Error(err))
		return r.CountLessons(ctx, courseID)
	}

	key := lessonCountKey(courseID, version)
	cached, err := r.Redis.Get(ctx, key).Result()
	if err == nil {
		if n, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
			return n, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logger.Log.Warn("Lesson count cache read failed", zap.Uint("courseId", courseID), zap.Error(err))
	}

	count, err := r.CountLessons(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if err := r.Redis.Set(ctx, key, count, LessonCountTTL).Err(); err != nil {
		logger.Log.Warn("Lesson count cache write failed", zap.Uint("courseId", courseID), zap.Error(err))
	}
	return count, nil
}

func (r *CourseRepository) invalidateLessonCount(ctx context.Context, courseID uint) {
	if r.Redis == nil {
		return
	}
	if err := r.Redis.Incr(ctx, lessonCountVersionKey(courseID)).Err(); err != nil {
		logger.Log.Warn("Lesson count cache invalidation failed", zap.Uint("courseId", courseID), zap.Error(err))
	}
}

// Enroll 重复选课返回 created=false
func (r *CourseRepository) Enroll(courseID, studentID uint) (bool, error) {
	e := model.Enrollment{CourseID: courseID, StudentID: studentID}
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&e)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CourseRepository) IsEnrolled(courseID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) ListStudentIDs(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Pluck("student_id", &ids).Error
	return ids, err
}

// ListEnrolledCourses 学生已选课程
func (r *CourseRepository) ListEnrolledCourses(studentID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Preload("Teacher").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ?", studentID).
		Order("enrollments.id ASC").
		Find(&courses).Error
	return courses, err
}
