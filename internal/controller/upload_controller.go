package controller

import (
	"strconv"

	"lecturelab_backend/internal/service"
	"lecturelab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	UploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

// UploadPDF godoc
// @Summary 上传讲义生成课程
// @Description 上传 PDF，提取文本后调用大模型生成课程并返回二维码
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param pdf formData file true "Lecture PDF (<= 50MB)"
// @Param itemCount formData int false "Number of lesson items (1-20, default 5)"
// @Success 201 {object} service.UploadResult
// @Failure 400 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /upload-pdf [post]
func (c *UploadController) UploadPDF(ctx *gin.Context) {
	header, err := ctx.FormFile("pdf")
	if err != nil {
		util.RespondError(ctx, util.NewValidationError("PDF file is required", "pdf"))
		return
	}

	itemCount := 0
	if raw := ctx.PostForm("itemCount"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			util.RespondError(ctx, util.NewValidationError("itemCount must be an integer", "itemCount"))
			return
		}
		itemCount = n
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	result, err := c.UploadService.CreateLessonFromPDF(ctx.Request.Context(), service.UploadedPDF{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
	}, itemCount)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}
