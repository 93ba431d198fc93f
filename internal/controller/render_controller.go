package controller

import (
	"net/http"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/service"
	"lecturelab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RenderController struct {
	RenderService *service.RenderService
}

func NewRenderController(renderService *service.RenderService) *RenderController {
	return &RenderController{RenderService: renderService}
}

// RenderQuiz godoc
// @Summary 渲染测验页面
// @Description 把 /generate/quiz 的结果渲染为独立 HTML 页面
// @Tags render
// @Accept json
// @Produce html
// @Param request body model.QuizContent true "Quiz"
// @Success 200 {string} string "HTML"
// @Failure 400 {object} util.ErrorResponse
// @Router /render/quiz [post]
func (c *RenderController) RenderQuiz(ctx *gin.Context) {
	var quiz model.QuizContent
	if err := ctx.ShouldBindJSON(&quiz); err != nil {
		util.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}

	page, err := c.RenderService.QuizPage(&quiz)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// RenderFlashcards godoc
// @Summary 渲染闪卡页面
// @Tags render
// @Accept json
// @Produce html
// @Param request body model.FlashcardContent true "Flashcards"
// @Success 200 {string} string "HTML"
// @Failure 400 {object} util.ErrorResponse
// @Router /render/flashcards [post]
func (c *RenderController) RenderFlashcards(ctx *gin.Context) {
	var cards model.FlashcardContent
	if err := ctx.ShouldBindJSON(&cards); err != nil {
		util.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}

	page, err := c.RenderService.FlashcardsPage(&cards)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
