package controller

import (
	"context"

	"lecturelab_backend/internal/service"
	"lecturelab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GenerateController struct {
	Generator *service.GeneratorService
}

func NewGenerateController(generator *service.GeneratorService) *GenerateController {
	return &GenerateController{Generator: generator}
}

// GenerateReq 讲义文本和期望数量，count 为 0 时使用默认值
type GenerateReq struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

func (c *GenerateController) handle(ctx *gin.Context, fn func(context.Context, GenerateReq) (interface{}, error)) {
	var req GenerateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body: "+err.Error())
		return
	}

	out, err := fn(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// GenerateLesson godoc
// @Summary 生成课程内容
// @Description 仅生成不入库，入库请使用 /lessons 或 /upload-pdf
// @Tags generate
// @Accept json
// @Produce json
// @Param request body GenerateReq true "Source text"
// @Success 200 {object} model.GeneratedLesson
// @Failure 400 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /generate/lesson [post]
func (c *GenerateController) GenerateLesson(ctx *gin.Context) {
	c.handle(ctx, func(rc context.Context, req GenerateReq) (interface{}, error) {
		return c.Generator.GenerateLesson(rc, req.Text, req.Count)
	})
}

// GenerateQuiz godoc
// @Summary 生成测验
// @Tags generate
// @Accept json
// @Produce json
// @Param request body GenerateReq true "Source text"
// @Success 200 {object} model.QuizContent
// @Failure 400 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /generate/quiz [post]
func (c *GenerateController) GenerateQuiz(ctx *gin.Context) {
	c.handle(ctx, func(rc context.Context, req GenerateReq) (interface{}, error) {
		return c.Generator.GenerateQuiz(rc, req.Text, req.Count)
	})
}

// GeneratePolls godoc
// @Summary 生成投票
// @Tags generate
// @Accept json
// @Produce json
// @Param request body GenerateReq true "Source text"
// @Success 200 {object} model.PollContent
// @Failure 400 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /generate/poll [post]
func (c *GenerateController) GeneratePolls(ctx *gin.Context) {
	c.handle(ctx, func(rc context.Context, req GenerateReq) (interface{}, error) {
		return c.Generator.GeneratePolls(rc, req.Text, req.Count)
	})
}

// GenerateSummary godoc
// @Summary 生成摘要
// @Description count 对摘要无效
// @Tags generate
// @Accept json
// @Produce json
// @Param request body GenerateReq true "Source text"
// @Success 200 {object} model.SummaryContent
// @Failure 400 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /generate/summary [post]
func (c *GenerateController) GenerateSummary(ctx *gin.Context) {
	c.handle(ctx, func(rc context.Context, req GenerateReq) (interface{}, error) {
		return c.Generator.GenerateSummary(rc, req.Text)
	})
}

// GenerateKeyPoints godoc
// @Summary 提取要点
// @Tags generate
// @Accept json
// @Produce json
// @Param request body GenerateReq true "Source text"
// @Success 200 {object} model.KeyPointsContent
// @Failure 400 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /generate/keypoints [post]
func (c *GenerateController) GenerateKeyPoints(ctx *gin.Context) {
	c.handle(ctx, func(rc context.Context, req GenerateReq) (interface{}, error) {
		return c.Generator.GenerateKeyPoints(rc, req.Text, req.Count)
	})
}

// GenerateFlashcards godoc
// @Summary 生成闪卡
// @Tags generate
// @Accept json
// @Produce json
// @Param request body GenerateReq true "Source text"
// @Success 200 {object} model.FlashcardContent
// @Failure 400 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /generate/flashcards [post]
func (c *GenerateController) GenerateFlashcards(ctx *gin.Context) {
	c.handle(ctx, func(rc context.Context, req GenerateReq) (interface{}, error) {
		return c.Generator.GenerateFlashcards(rc, req.Text, req.Count)
	})
}
