package controller

import (
	"net/http"

	"lecturelab_backend/internal/service"
	"lecturelab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	AnswerService *service.AnswerService
	LessonService *service.LessonService
	Hub           *service.ResultsHub
}

func NewAnswerController(answerService *service.AnswerService, lessonService *service.LessonService, hub *service.ResultsHub) *AnswerController {
	return &AnswerController{AnswerService: answerService, LessonService: lessonService, Hub: hub}
}

// SubmitAnswer godoc
// @Summary 提交答案
// @Description 每个学生对同一课程的同一项只能作答一次
// @Tags answers
// @Accept json
// @Produce json
// @Param request body service.SubmitAnswerReq true "Answer"
// @Success 201 {object} service.SubmitResult
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Failure 409 {object} util.ErrorResponse
// @Router /answers [post]
func (c *AnswerController) SubmitAnswer(ctx *gin.Context) {
	var req service.SubmitAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}

	result, err := c.AnswerService.Submit(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// ItemStatistics godoc
// @Summary 单题统计
// @Description 按人数降序返回各答案的计数
// @Tags answers
// @Produce json
// @Param id path string true "Lesson ID"
// @Param idx path int true "Item index"
// @Success 200 {object} service.ItemStats
// @Failure 400 {object} util.ErrorResponse
// @Router /answers/lesson/{id}/item/{idx} [get]
func (c *AnswerController) ItemStatistics(ctx *gin.Context) {
	idx, ok := util.ParseIndex(ctx.Param("idx"))
	if !ok {
		util.Error(ctx, http.StatusBadRequest, "itemIndex must be a non-negative integer", []string{"itemIndex"})
		return
	}

	stats, err := c.AnswerService.ItemStatistics(ctx.Request.Context(), ctx.Param("id"), idx)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// LessonResults godoc
// @Summary 课程报告
// @Description 各题统计、参与人数和最近作答记录
// @Tags answers
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} service.LessonReport
// @Failure 404 {object} util.ErrorResponse
// @Router /answers/lesson/{id}/results [get]
func (c *AnswerController) LessonResults(ctx *gin.Context) {
	report, err := c.AnswerService.LessonReport(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// StudentProgress godoc
// @Summary 学生进度
// @Tags answers
// @Produce json
// @Param id path string true "Lesson ID"
// @Param sid path string true "Student ID"
// @Success 200 {object} service.StudentProgress
// @Router /answers/lesson/{id}/student/{sid} [get]
func (c *AnswerController) StudentProgress(ctx *gin.Context) {
	progress, err := c.AnswerService.ProgressFor(ctx.Request.Context(), ctx.Param("id"), ctx.Param("sid"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// LiveResults godoc
// @Summary 实时统计推送
// @Description WebSocket，每次有新答案时推送该题的最新统计
// @Tags answers
// @Param id path string true "Lesson ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 404 {object} util.ErrorResponse
// @Router /answers/lesson/{id}/live [get]
func (c *AnswerController) LiveResults(ctx *gin.Context) {
	lessonID := ctx.Param("id")
	if _, err := c.LessonService.Get(ctx.Request.Context(), lessonID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	service.ServeLive(c.Hub, ctx.Writer, ctx.Request, lessonID)
}
