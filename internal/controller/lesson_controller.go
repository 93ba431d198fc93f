package controller

import (
	"net/http"

	"lecturelab_backend/internal/service"
	"lecturelab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
	RenderService *service.RenderService
}

func NewLessonController(lessonService *service.LessonService, renderService *service.RenderService) *LessonController {
	return &LessonController{LessonService: lessonService, RenderService: renderService}
}

// ListLessons godoc
// @Summary 课程列表
// @Description 按创建时间倒序返回课程摘要（不含内容项）
// @Tags lessons
// @Produce json
// @Success 200 {array} model.LessonSummary
// @Failure 500 {object} util.ErrorResponse
// @Router /lessons [get]
func (c *LessonController) ListLessons(ctx *gin.Context) {
	lessons, err := c.LessonService.List(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// GetLesson godoc
// @Summary 获取课程
// @Description 返回课程及解析后的内容项
// @Tags lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} model.Lesson
// @Failure 404 {object} util.ErrorResponse
// @Router /lessons/{id} [get]
func (c *LessonController) GetLesson(ctx *gin.Context) {
	lesson, err := c.LessonService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// GetActiveLesson godoc
// @Summary 当前激活的课程
// @Tags lessons
// @Produce json
// @Success 200 {object} model.Lesson
// @Failure 404 {object} util.ErrorResponse
// @Router /lessons/active [get]
func (c *LessonController) GetActiveLesson(ctx *gin.Context) {
	lesson, err := c.LessonService.GetActive(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// LessonHTML godoc
// @Summary 课程页面
// @Description 学生端可直接打开的交互式课程页面
// @Tags lessons
// @Produce html
// @Param id path string true "Lesson ID"
// @Success 200 {string} string "HTML"
// @Failure 404 {object} util.ErrorResponse
// @Router /lessons/{id}/html [get]
func (c *LessonController) LessonHTML(ctx *gin.Context) {
	lesson, err := c.LessonService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	page, err := c.RenderService.LessonPage(lesson)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// CreateLesson godoc
// @Summary 创建课程
// @Description 手动创建课程，新课程默认未激活
// @Tags lessons
// @Accept json
// @Produce json
// @Param request body service.CreateLessonReq true "Lesson"
// @Success 201 {object} model.LessonSummary
// @Failure 400 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /lessons [post]
func (c *LessonController) CreateLesson(ctx *gin.Context) {
	var req service.CreateLessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}

	lesson, err := c.LessonService.CreateManual(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, lesson.Summary())
}

// SetLessonStatus godoc
// @Summary 激活/停用课程
// @Description 激活时其他课程自动停用
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param request body service.SetStatusReq true "Status"
// @Success 200 {object} util.MessageResponse
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /lessons/{id}/status [patch]
func (c *LessonController) SetLessonStatus(ctx *gin.Context) {
	var req service.SetStatusReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}

	if err := c.LessonService.SetStatus(ctx.Request.Context(), ctx.Param("id"), req); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Message(ctx, "Lesson status updated")
}

// DeleteLesson godoc
// @Summary 删除课程
// @Description 同时删除该课程的全部答题记录
// @Tags lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} util.MessageResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /lessons/{id} [delete]
func (c *LessonController) DeleteLesson(ctx *gin.Context) {
	if err := c.LessonService.Remove(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Message(ctx, "Lesson deleted successfully")
}
