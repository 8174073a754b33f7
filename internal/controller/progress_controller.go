package controller

import (
	"skillnest_backend/internal/service"
	"skillnest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// MarkProgressRequest 旧版接口的请求体
// swagger:model MarkProgressRequest
type MarkProgressRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
	LessonID uint `json:"lessonId" binding:"required"`
}

// MarkComplete godoc
// @Summary 标记课时完成
// @Description 幂等，重复调用不改变结果
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Failure 404 {object} util.Response "课时不存在或不属于该课程"
// @Router /api/courses/{id}/lessons/{lessonId}/complete [post]
func (c *ProgressController) MarkComplete(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}

	c.markComplete(ctx, actor, courseID, lessonID)
}

// MarkCompleteLegacy godoc
// @Summary 标记课时完成（旧版）
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body MarkProgressRequest true "课程与课时"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Router /api/users/progress [post]
func (c *ProgressController) MarkCompleteLegacy(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req MarkProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	c.markComplete(ctx, actor, req.CourseID, req.LessonID)
}

func (c *ProgressController) markComplete(ctx *gin.Context, actor service.Actor, courseID, lessonID uint) {
	view, err := c.ProgressService.MarkComplete(ctx.Request.Context(), actor.UserID, courseID, lessonID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// GetProgress godoc
// @Summary 课程学习进度
// @Description 完成度按当前课时总数计算；没有课时的课程为 100
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.ProgressSummary}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	summary, err := c.ProgressService.GetProgress(ctx.Request.Context(), actor.UserID, courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}
