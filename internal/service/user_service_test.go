package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"skillnest_backend/internal/config"
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/repository"
	"skillnest_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, f *fixture) (*UserService, string) {
	t.Helper()
	dir := t.TempDir()
	storage := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir})
	return NewUserService(f.users, f.courses, storage), dir
}

func TestProfileAndPassword(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.users, testConfig())
	svc, _ := newUserService(t, f)

	res, err := auth.Register(&model.User{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	u, err := svc.UpdateProfile(res.ID, ProfileUpdate{Bio: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "hello", u.Bio)

	assert.ErrorIs(t, svc.ChangePassword(res.ID, "nope", "secret2"), util.ErrWrongPassword)
	require.NoError(t, svc.ChangePassword(res.ID, "secret1", "secret2"))

	_, err = auth.Login("ann@example.com", "secret2")
	assert.NoError(t, err)

	_, err = svc.GetUserByID(9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestUploadAvatarLocal(t *testing.T) {
	f := newFixture(t)
	svc, dir := newUserService(t, f)
	student := f.user(t, "s@example.com", model.Student)

	data := []byte("\x89PNG\r\n\x1a\nfake")
	u, err := svc.UploadAvatar(context.Background(), student.UserID, "Me.PNG", bytes.NewReader(data), int64(len(data)), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.AvatarURL, "/uploads/avatars/"))
	assert.True(t, strings.HasSuffix(u.AvatarURL, ".png"))

	stored := filepath.Join(dir, strings.TrimPrefix(u.AvatarURL, "/uploads/"))
	got, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestAdminUserManagement(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(t, f)
	student := f.user(t, "s@example.com", model.Student)
	f.user(t, "t@example.com", model.Teacher)

	users, total, err := svc.GetUsers(repository.UserFilter{Role: "student"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, users, 1)

	require.NoError(t, svc.DeleteUser(student.UserID))
	assert.ErrorIs(t, svc.DeleteUser(student.UserID), util.ErrUserNotFound)
}

func TestListEnrollments(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUserService(t, f)
	teacher := f.user(t, "t@example.com", model.Teacher)
	student := f.user(t, "s@example.com", model.Student)
	course, _ := f.course(t, teacher, 0)

	_, err := f.courses.Enroll(course.ID, student.UserID)
	require.NoError(t, err)

	courses, err := svc.ListEnrollments(student.UserID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, course.ID, courses[0].ID)
}
