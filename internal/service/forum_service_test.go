package service

import (
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForumThreadsAndReplies(t *testing.T) {
	f := newFixture(t)
	svc := NewForumService(f.threads, f.courses)
	teacher := f.user(t, "t@example.com", model.Teacher)
	student := f.user(t, "s@example.com", model.Student)
	outsider := f.user(t, "x@example.com", model.Student)
	course, _ := f.course(t, teacher, 0)

	_, err := svc.CreateThread(student, ThreadInput{CourseID: course.ID, Title: "Hi", Body: "question"})
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	_, err = f.courses.Enroll(course.ID, student.UserID)
	require.NoError(t, err)

	thread, err := svc.CreateThread(student, ThreadInput{CourseID: course.ID, Title: "Hi", Body: "question"})
	require.NoError(t, err)
	require.NotNil(t, thread.User)
	assert.Equal(t, student.UserID, thread.User.ID)

	_, err = svc.CreateThread(teacher, ThreadInput{CourseID: course.ID, Title: "Welcome", Body: "read this"})
	require.NoError(t, err)

	// 回复不要求选课
	withReply, err := svc.Reply(outsider, thread.ID, "me too")
	require.NoError(t, err)
	require.Len(t, withReply.Replies, 1)
	assert.Equal(t, "me too", withReply.Replies[0].Body)

	_, err = svc.Reply(student, 9999, "hello")
	assert.ErrorIs(t, err, util.ErrThreadNotFound)

	threads, err := svc.ListByCourse(course.ID)
	require.NoError(t, err)
	assert.Len(t, threads, 2)

	_, err = svc.CreateThread(student, ThreadInput{CourseID: 9999, Title: "x", Body: "y"})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}
