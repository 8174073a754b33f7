package controller

import (
	"skillnest_backend/internal/service"
	"skillnest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// SubmitAttemptRequest answers[i] 对应第 i 题，null 表示未作答
// swagger:model SubmitAttemptRequest
type SubmitAttemptRequest struct {
	Answers []*int `json:"answers" binding:"required"`
}

// ListQuizzes godoc
// @Summary 全部测验
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetQuiz godoc
// @Summary 测验详情
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	quiz, err := c.QuizService.GetQuiz(ctx.Request.Context(), id)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// ListByCourse godoc
// @Summary 课程下的测验
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/quizzes/course/{courseId} [get]
func (c *QuizController) ListByCourse(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	quizzes, err := c.QuizService.ListByCourse(courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// CreateQuiz godoc
// @Summary 创建测验
// @Description 每道可判分的题目必须有且仅有一个正确选项
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuizInput true "测验"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "题目不合法"
// @Failure 401 {object} util.Response "非课程教师"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(actor, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary 更新测验
// @Description 为空的字段保持原值
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Param   body body service.QuizInput true "测验"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 401 {object} util.Response "非课程教师"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpdateQuiz(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response "非课程教师"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.QuizService.DeleteQuiz(ctx.Request.Context(), actor, id); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Quiz deleted successfully"})
}

// SubmitAttempt godoc
// @Summary 提交测验
// @Description score/total 为答对题数，percentage 为扣分后的百分制得分
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Param   body body SubmitAttemptRequest true "答案"
// @Success 201 {object} util.Response{data=service.AttemptResult}
// @Failure 400 {object} util.Response "答案数量或下标不合法"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id}/attempt [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.QuizService.SubmitAttempt(ctx.Request.Context(), id, actor.UserID, req.Answers)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// ListAttempts godoc
// @Summary 我的提交记录
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=[]model.Attempt}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id}/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	attempts, err := c.QuizService.ListAttempts(ctx.Request.Context(), id, actor.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
