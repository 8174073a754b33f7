package controller

import (
	"skillnest_backend/internal/service"
	"skillnest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ForumController struct {
	ForumService *service.ForumService
}

func NewForumController(forumService *service.ForumService) *ForumController {
	return &ForumController{ForumService: forumService}
}

// ReplyRequest
// swagger:model ReplyRequest
type ReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

// CreateThread godoc
// @Summary 发帖
// @Tags 讨论区
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ThreadInput true "帖子"
// @Success 201 {object} util.Response{data=model.Thread}
// @Failure 400 {object} util.Response "包含敏感词"
// @Failure 403 {object} util.Response "未选课"
// @Router /api/forum [post]
func (c *ForumController) CreateThread(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.ThreadInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	thread, err := c.ForumService.CreateThread(actor, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, thread)
}

// ListByCourse godoc
// @Summary 课程讨论列表
// @Tags 讨论区
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Thread}
// @Router /api/forum/course/{courseId} [get]
func (c *ForumController) ListByCourse(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	threads, err := c.ForumService.ListByCourse(courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, threads)
}

// Reply godoc
// @Summary 回复帖子
// @Tags 讨论区
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   threadId path int true "帖子ID"
// @Param   body body ReplyRequest true "回复"
// @Success 201 {object} util.Response{data=[]model.ThreadReply}
// @Failure 404 {object} util.Response "帖子不存在"
// @Router /api/forum/{threadId}/reply [post]
func (c *ForumController) Reply(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	threadID, ok := pathID(ctx, "threadId")
	if !ok {
		return
	}

	var req ReplyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	thread, err := c.ForumService.Reply(actor, threadID, req.Body)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, thread.Replies)
}
