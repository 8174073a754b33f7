package service

import (
	"context"
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourQuestionQuiz(t *testing.T, f *fixture, svc *QuizService, teacher Actor, courseID uint) *model.Quiz {
	t.Helper()
	qs := make([]model.Question, 4)
	for i := range qs {
		qs[i] = model.Question{Text: "q", Options: options(i, 4)}
	}
	quiz, err := svc.CreateQuiz(teacher, QuizInput{Title: "Basics", CourseID: courseID, Questions: qs})
	require.NoError(t, err)
	return quiz
}

func TestSubmitAttemptRawAndWeighted(t *testing.T) {
	f := newFixture(t)
	svc := f.quizService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	student := f.user(t, "s@example.com", model.Student)
	course, _ := f.course(t, teacher, 0)
	quiz := fourQuestionQuiz(t, f, svc, teacher, course.ID)

	res, err := svc.SubmitAttempt(context.Background(), quiz.ID, student.UserID,
		[]*int{intp(0), intp(1), intp(0), intp(3)})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 4, res.Total)
	// 3 * 25 - 1
	assert.Equal(t, 74, res.Percentage)
	assert.Equal(t, 1.0, res.Penalty)
	assert.True(t, res.Passed)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 1, res.Incorrect)
	assert.NotZero(t, res.AttemptID)

	attempts, err := svc.ListAttempts(context.Background(), quiz.ID, student.UserID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 3, attempts[0].Score)
	require.Len(t, attempts[0].Answers, 4)
	assert.Equal(t, 2, attempts[0].Answers[2].QuestionIndex)
	assert.Equal(t, 0, *attempts[0].Answers[2].ChosenOptionIndex)
}

func TestSubmitAttemptAppendsEveryTime(t *testing.T) {
	f := newFixture(t)
	svc := f.quizService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	student := f.user(t, "s@example.com", model.Student)
	course, _ := f.course(t, teacher, 0)
	quiz := fourQuestionQuiz(t, f, svc, teacher, course.ID)

	ctx := context.Background()
	_, err := svc.SubmitAttempt(ctx, quiz.ID, student.UserID, []*int{nil, nil, nil, nil})
	require.NoError(t, err)
	res, err := svc.SubmitAttempt(ctx, quiz.ID, student.UserID, []*int{intp(0), intp(1), intp(2), intp(3)})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Score)
	assert.Equal(t, 100, res.Percentage)

	attempts, err := svc.ListAttempts(ctx, quiz.ID, student.UserID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestSubmitAttemptSkippedOnly(t *testing.T) {
	f := newFixture(t)
	svc := f.quizService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, _ := f.course(t, teacher, 0)
	quiz := fourQuestionQuiz(t, f, svc, teacher, course.ID)

	res, err := svc.SubmitAttempt(context.Background(), quiz.ID, 99, []*int{nil, nil, nil, nil})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 0, res.Percentage)
	assert.Equal(t, 0.0, res.Penalty)
	assert.Equal(t, 4, res.Skipped)
	assert.False(t, res.Passed)
}

func TestSubmitAttemptErrors(t *testing.T) {
	f := newFixture(t)
	svc := f.quizService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, _ := f.course(t, teacher, 0)
	quiz := fourQuestionQuiz(t, f, svc, teacher, course.ID)
	ctx := context.Background()

	_, err := svc.SubmitAttempt(ctx, 9999, 1, []*int{nil})
	assert.ErrorIs(t, err, util.ErrQuizNotFound)

	_, err = svc.SubmitAttempt(ctx, quiz.ID, 1, []*int{intp(0)})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = svc.SubmitAttempt(ctx, quiz.ID, 1, []*int{intp(9), nil, nil, nil})
	assert.ErrorIs(t, err, util.ErrValidation)

	var count int64
	require.NoError(t, f.db.Model(&model.Attempt{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateQuizChecks(t *testing.T) {
	f := newFixture(t)
	svc := f.quizService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	other := f.user(t, "o@example.com", model.Teacher)
	admin := f.user(t, "a@example.com", model.Admin)
	course, _ := f.course(t, teacher, 0)

	valid := []model.Question{{Text: "q", Options: options(0, 2)}}

	_, err := svc.CreateQuiz(teacher, QuizInput{Title: "x", CourseID: 9999, Questions: valid})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	_, err = svc.CreateQuiz(other, QuizInput{Title: "x", CourseID: course.ID, Questions: valid})
	assert.ErrorIs(t, err, util.ErrNotOwner)

	twoCorrect := []model.Question{{Text: "q", Options: []model.Option{{Text: "a", Correct: true}, {Text: "b", Correct: true}}}}
	_, err = svc.CreateQuiz(teacher, QuizInput{Title: "x", CourseID: course.ID, Questions: twoCorrect})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = svc.CreateQuiz(teacher, QuizInput{Title: "x", CourseID: course.ID})
	assert.ErrorIs(t, err, util.ErrValidation)

	quiz, err := svc.CreateQuiz(admin, QuizInput{Title: "x", CourseID: course.ID, Questions: valid})
	require.NoError(t, err)
	assert.Equal(t, course.ID, quiz.CourseID)
}

func TestUpdateAndDeleteQuiz(t *testing.T) {
	f := newFixture(t)
	svc := f.quizService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	other := f.user(t, "o@example.com", model.Teacher)
	course, _ := f.course(t, teacher, 0)
	otherCourse, _ := f.course(t, other, 0)
	quiz := fourQuestionQuiz(t, f, svc, teacher, course.ID)
	ctx := context.Background()

	updated, err := svc.UpdateQuiz(ctx, teacher, quiz.ID, QuizInput{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Len(t, updated.Questions, 4)

	_, err = svc.UpdateQuiz(ctx, teacher, quiz.ID, QuizInput{CourseID: otherCourse.ID})
	assert.ErrorIs(t, err, util.ErrNotOwner)

	_, err = svc.UpdateQuiz(ctx, other, quiz.ID, QuizInput{Title: "Hijack"})
	assert.ErrorIs(t, err, util.ErrNotOwner)

	assert.ErrorIs(t, svc.DeleteQuiz(ctx, other, quiz.ID), util.ErrNotOwner)
	require.NoError(t, svc.DeleteQuiz(ctx, teacher, quiz.ID))

	_, err = svc.GetQuiz(ctx, quiz.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestPolicyHotSwapAffectsNextAttempt(t *testing.T) {
	f := newFixture(t)
	svc := f.quizService()
	teacher := f.user(t, "t@example.com", model.Teacher)
	course, _ := f.course(t, teacher, 0)
	quiz := fourQuestionQuiz(t, f, svc, teacher, course.ID)
	ctx := context.Background()

	answers := []*int{intp(0), intp(1), intp(0), intp(3)}
	p := svc.Policy.Get()
	p.PassThreshold = 80
	svc.Policy.Set(p)

	res, err := svc.SubmitAttempt(ctx, quiz.ID, 1, answers)
	require.NoError(t, err)
	assert.Equal(t, 74, res.Percentage)
	assert.False(t, res.Passed)
}
