package app

import (
	"lecturelab_backend/docs"
	"lecturelab_backend/internal/config"
	"lecturelab_backend/internal/util"
	"lecturelab_backend/pkg/monitoring"
	"lecturelab_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 二维码指向的学生入口
	router.GET("/lesson/:id", c.lesson.LessonHTML)

	// 本地存储时直接提供上传文件下载
	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/files", cfg.Storage.LocalPath)
	}

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		a.registerLessonRoutes(api, c)
		a.registerAnswerRoutes(api, c)
		a.registerContentRoutes(api, c, cfg)
	}

	router.NoRoute(util.NotFound)
}

func (a *App) registerLessonRoutes(api *gin.RouterGroup, c *controllers) {
	lessons := api.Group("/lessons")
	{
		lessons.GET("", c.lesson.ListLessons)
		lessons.POST("", c.lesson.CreateLesson)
		lessons.GET("/active", c.lesson.GetActiveLesson)
		lessons.GET("/:id", c.lesson.GetLesson)
		lessons.GET("/:id/html", c.lesson.LessonHTML)
		lessons.PATCH("/:id/status", c.lesson.SetLessonStatus)
		lessons.DELETE("/:id", c.lesson.DeleteLesson)
	}
}

func (a *App) registerAnswerRoutes(api *gin.RouterGroup, c *controllers) {
	answers := api.Group("/answers")
	{
		answers.POST("", c.answer.SubmitAnswer)
		answers.GET("/lesson/:id/item/:idx", c.answer.ItemStatistics)
		answers.GET("/lesson/:id/results", c.answer.LessonResults)
		answers.GET("/lesson/:id/student/:sid", c.answer.StudentProgress)
		answers.GET("/lesson/:id/live", c.answer.LiveResults)
	}
}

func (a *App) registerContentRoutes(api *gin.RouterGroup, c *controllers, cfg *config.Config) {
	api.GET("/qr/:lessonId", c.qr.LessonQR)

	// multipart 额外开销留 1MB 余量
	api.POST("/upload-pdf", security.BodyLimit(cfg.Upload.MaxBytes()+(1<<20)), c.upload.UploadPDF)

	generate := api.Group("/generate")
	{
		generate.POST("/lesson", c.generate.GenerateLesson)
		generate.POST("/quiz", c.generate.GenerateQuiz)
		generate.POST("/poll", c.generate.GeneratePolls)
		generate.POST("/summary", c.generate.GenerateSummary)
		generate.POST("/keypoints", c.generate.GenerateKeyPoints)
		generate.POST("/flashcards", c.generate.GenerateFlashcards)
	}

	render := api.Group("/render")
	{
		render.POST("/quiz", c.render.RenderQuiz)
		render.POST("/flashcards", c.render.RenderFlashcards)
	}
}
