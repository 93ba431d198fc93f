package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lecturelab_backend/internal/config"
	"lecturelab_backend/internal/controller"
	"lecturelab_backend/internal/middleware"
	"lecturelab_backend/internal/repository"
	"lecturelab_backend/internal/service"
	"lecturelab_backend/pkg/database"
	"lecturelab_backend/pkg/logger"
	"lecturelab_backend/pkg/monitoring"
	"lecturelab_backend/pkg/security"
	"lecturelab_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	lesson *repository.LessonRepository
	answer *repository.AnswerRepository
}

type services struct {
	storage   *service.StorageService
	ai        *service.AIService
	generator *service.GeneratorService
	pdf       *service.PDFService
	qr        *service.QRService
	render    *service.RenderService
	lesson    *service.LessonService
	answer    *service.AnswerService
	upload    *service.UploadService
	hub       *service.ResultsHub
}

type controllers struct {
	lesson   *controller.LessonController
	answer   *controller.AnswerController
	upload   *controller.UploadController
	qr       *controller.QRController
	generate *controller.GenerateController
	render   *controller.RenderController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 配置文件变更后由 configwatcher 调用
func (a *App) ReloadConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		lesson: repository.NewLessonRepository(db),
		answer: repository.NewAnswerRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(&cfg.Storage)
	s.ai = service.NewAIService(cfg.AI)
	s.generator = service.NewGeneratorService(s.ai, cfg.AI.MaxInputChars)
	s.pdf = service.NewPDFService()
	s.qr = service.NewQRService(cfg.Server.PublicURL)
	s.render = service.NewRenderService(cfg.Server.PublicURL + "/api")

	s.hub = service.NewResultsHub(rdb)
	go s.hub.Run()

	s.lesson = service.NewLessonService(repos.lesson, s.storage)
	s.answer = service.NewAnswerService(repos.answer, repos.lesson, s.hub)
	s.upload = service.NewUploadService(
		s.storage,
		s.pdf,
		s.generator,
		s.lesson,
		s.qr,
		cfg.Upload.MaxBytes(),
		cfg.Upload.DefaultItemCount,
	)

	// 模型、地址和日志级别支持热更新
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ai.SetConfig(newCfg.AI)
		logger.SetMode(newCfg.Server.Mode)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		lesson:   controller.NewLessonController(s.lesson, s.render),
		answer:   controller.NewAnswerController(s.answer, s.lesson, s.hub),
		upload:   controller.NewUploadController(s.upload),
		qr:       controller.NewQRController(s.qr),
		generate: controller.NewGenerateController(s.generator),
		render:   controller.NewRenderController(s.render),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewRouter 组装中间件和路由，不依赖外部服务，测试中直接使用
func (a *App) NewRouter(db *gorm.DB, rdb *redis.Client) *gin.Engine {
	repos := a.initRepositories(db)
	a.services = a.initServices(repos, a.Config, rdb)
	controllers := a.initControllers(a.services, db)

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	a.setupMiddlewares(router, a.Config)
	a.registerRoutes(router, controllers, a.Config)
	return router
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: db}

	if cfg.MigrateOnly {
		return app, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	app.Redis = rdb

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	app.Router = app.NewRouter(db, rdb)
	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// 关闭实时推送连接
	if a.services != nil && a.services.hub != nil {
		a.services.hub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
