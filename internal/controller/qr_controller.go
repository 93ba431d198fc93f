package controller

import (
	"lecturelab_backend/internal/service"
	"lecturelab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QRController struct {
	QRService *service.QRService
}

func NewQRController(qrService *service.QRService) *QRController {
	return &QRController{QRService: qrService}
}

// LessonQR godoc
// @Summary 课程二维码
// @Description 返回课程链接和 base64 PNG 二维码
// @Tags qr
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} service.LessonQR
// @Failure 500 {object} util.ErrorResponse
// @Router /qr/{lessonId} [get]
func (c *QRController) LessonQR(ctx *gin.Context) {
	qr, err := c.QRService.LessonQR(ctx.Param("lessonId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, qr)
}
