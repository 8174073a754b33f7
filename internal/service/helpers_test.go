package service

import (
	"skillnest_backend/internal/config"
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/repository"
	"skillnest_backend/internal/scoring"
	"skillnest_backend/pkg/database/dbtest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	users    *repository.UserRepository
	courses  *repository.CourseRepository
	quizzes  *repository.QuizRepository
	attempts *repository.AttemptRepository
	progress *repository.ProgressRepository
	threads  *repository.ThreadRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.MustOpen(t)
	return &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		courses:  repository.NewCourseRepository(db, nil),
		quizzes:  repository.NewQuizRepository(db),
		attempts: repository.NewAttemptRepository(db),
		progress: repository.NewProgressRepository(db),
		threads:  repository.NewThreadRepository(db),
	}
}

func (f *fixture) user(t *testing.T, email string, role model.UserRole) Actor {
	t.Helper()
	u := &model.User{Name: email, Email: email, Password: "x", Role: role}
	require.NoError(t, f.users.Create(u))
	return Actor{UserID: u.ID, Role: role}
}

func (f *fixture) course(t *testing.T, teacher Actor, lessons int) (*model.Course, []model.Lesson) {
	t.Helper()
	c := &model.Course{Title: "Go", Description: "intro", TeacherID: teacher.UserID, Published: true}
	require.NoError(t, f.courses.Create(c))

	out := make([]model.Lesson, 0, lessons)
	for i := 0; i < lessons; i++ {
		l := model.Lesson{CourseID: c.ID, Title: "lesson", Order: i}
		require.NoError(t, f.courses.CreateLesson(&l))
		out = append(out, l)
	}
	return c, out
}

func (f *fixture) quizService() *QuizService {
	return NewQuizService(f.quizzes, f.attempts, f.courses, scoring.NewPolicyHolder(scoring.DefaultPolicy()))
}

func (f *fixture) progressService() *ProgressService {
	return NewProgressService(f.progress, f.courses)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}
}

func intp(v int) *int { return &v }

func options(correct, n int) []model.Option {
	opts := make([]model.Option, n)
	for i := range opts {
		opts[i] = model.Option{Text: string(rune('A' + i)), Correct: i == correct}
	}
	return opts
}
