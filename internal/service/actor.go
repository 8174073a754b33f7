package service

import (
	"skillnest_backend/internal/model"
	"skillnest_backend/internal/util"
)

// Actor 当前请求的调用者，由鉴权中间件解析出的 Claims 构造
type Actor struct {
	UserID uint
	Role   model.UserRole
}

func ActorFromClaims(c *util.Claims) Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{UserID: c.UserID, Role: c.Role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.Admin
}

// canManage 课程教师或管理员
func (a Actor) canManage(course *model.Course) bool {
	return a.IsAdmin() || course.TeacherID == a.UserID
}
