package service

import (
	"context"
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProgressFortyPercent(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, lessons := f.course(t, teacher, 5)
	ctx := context.Background()

	_, err := svc.MarkComplete(ctx, 7, course.ID, lessons[0].ID)
	require.NoError(t, err)
	_, err = svc.MarkComplete(ctx, 7, course.ID, lessons[2].ID)
	require.NoError(t, err)

	got, err := svc.GetProgress(ctx, 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CompletedCount)
	assert.Equal(t, 5, got.TotalCount)
	assert.Equal(t, 40, got.Percentage)
	assert.Equal(t, []uint{lessons[0].ID, lessons[2].ID}, got.CompletedLessons)
}

func TestMarkCompleteIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, lessons := f.course(t, teacher, 3)
	ctx := context.Background()

	once, err := svc.MarkComplete(ctx, 7, course.ID, lessons[1].ID)
	require.NoError(t, err)
	twice, err := svc.MarkComplete(ctx, 7, course.ID, lessons[1].ID)
	require.NoError(t, err)

	assert.Equal(t, once.CompletedLessons, twice.CompletedLessons)
	assert.Equal(t, []uint{lessons[1].ID}, twice.CompletedLessons)
	assert.Equal(t, once.ID, twice.ID)
}

func TestGetProgressZeroLessons(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, _ := f.course(t, teacher, 0)

	got, err := svc.GetProgress(context.Background(), 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Percentage)
	assert.Equal(t, 0, got.TotalCount)
	assert.Empty(t, got.CompletedLessons)
}

func TestGetProgressZeroLessonsAfterRemoval(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, lessons := f.course(t, teacher, 1)
	ctx := context.Background()

	_, err := svc.MarkComplete(ctx, 7, course.ID, lessons[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.courses.DeleteLesson(&lessons[0]))

	got, err := svc.GetProgress(ctx, 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Percentage)
}

func TestGetProgressIgnoresDeletedLessons(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, lessons := f.course(t, teacher, 3)
	ctx := context.Background()

	for _, l := range lessons[:2] {
		_, err := svc.MarkComplete(ctx, 7, course.ID, l.ID)
		require.NoError(t, err)
	}
	require.NoError(t, f.courses.DeleteLesson(&lessons[0]))

	got, err := svc.GetProgress(ctx, 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalCount)
	assert.Equal(t, 1, got.CompletedCount)
	assert.Equal(t, []uint{lessons[1].ID}, got.CompletedLessons)
	assert.Equal(t, 50, got.Percentage)
	assert.LessOrEqual(t, got.CompletedCount, got.TotalCount)

	// 进度记录仍保留原始完成集合
	p, err := f.progress.FindOne(ctx, 7, course.ID)
	require.NoError(t, err)
	assert.Len(t, p.LessonIDs(), 2)
}

func TestGetProgressWithoutRecordCreatesNothing(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, _ := f.course(t, teacher, 4)

	got, err := svc.GetProgress(context.Background(), 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Percentage)
	assert.Equal(t, 4, got.TotalCount)
	assert.Equal(t, 0, got.CompletedCount)

	var count int64
	require.NoError(t, f.db.Model(&model.Progress{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetProgressUsesLiveLessonCount(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, lessons := f.course(t, teacher, 2)
	ctx := context.Background()

	_, err := svc.MarkComplete(ctx, 7, course.ID, lessons[0].ID)
	require.NoError(t, err)

	got, err := svc.GetProgress(ctx, 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Percentage)

	require.NoError(t, f.courses.CreateLesson(&model.Lesson{CourseID: course.ID, Title: "new"}))
	require.NoError(t, f.courses.CreateLesson(&model.Lesson{CourseID: course.ID, Title: "newer"}))

	got, err = svc.GetProgress(ctx, 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalCount)
	assert.Equal(t, 25, got.Percentage)
}

func TestMarkCompleteRejectsForeignLesson(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, _ := f.course(t, teacher, 1)
	_, otherLessons := f.course(t, teacher, 1)
	ctx := context.Background()

	_, err := svc.MarkComplete(ctx, 7, course.ID, otherLessons[0].ID)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)

	_, err = svc.MarkComplete(ctx, 7, course.ID, 9999)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)

	var count int64
	require.NoError(t, f.db.Model(&model.Progress{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetProgressMissingCourse(t *testing.T) {
	f := newFixture(t)
	_, err := f.progressService().GetProgress(context.Background(), 7, 9999)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestConcurrentMarkCompleteSingleRecord(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, lessons := f.course(t, teacher, 6)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, len(lessons))
	for i, l := range lessons {
		wg.Add(1)
		go func(i int, lessonID uint) {
			defer wg.Done()
			_, errs[i] = svc.MarkComplete(ctx, 7, course.ID, lessonID)
		}(i, l.ID)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, f.db.Model(&model.Progress{}).
		Where("student_id = ? AND course_id = ?", 7, course.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := svc.GetProgress(ctx, 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Percentage)
	assert.Equal(t, 6, got.CompletedCount)
}
