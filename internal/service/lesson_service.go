package service

import (
	"context"
	"strings"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/repository"
	"lecturelab_backend/internal/util"
	"lecturelab_backend/pkg/logger"

	"go.uber.org/zap"
)

// LessonService 课程生命周期：创建、激活（全局唯一）、停用、删除
type LessonService struct {
	Repo    *repository.LessonRepository
	Storage *StorageService
}

func NewLessonService(repo *repository.LessonRepository, storage *StorageService) *LessonService {
	return &LessonService{Repo: repo, Storage: storage}
}

type CreateLessonReq struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	PDFPath     string      `json:"pdfPath"`
	Items       model.Items `json:"items"`
}

type SetStatusReq struct {
	IsActive *bool `json:"isActive"`
}

func (s *LessonService) CreateManual(ctx context.Context, req CreateLessonReq) (*model.Lesson, error) {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if len(req.Items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return nil, util.NewValidationError("", missing...)
	}
	if err := req.Items.Validate(); err != nil {
		return nil, util.NewValidationError(err.Error(), "items")
	}

	return s.create(ctx, &model.Lesson{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		PDFPath:     req.PDFPath,
		Items:       req.Items,
	})
}

// CreateFromGeneratedContent 生成结果来自外部模型，入库前再做一次结构校验
func (s *LessonService) CreateFromGeneratedContent(ctx context.Context, gen *model.GeneratedLesson, pdfPath string) (*model.Lesson, error) {
	if gen == nil {
		return nil, &util.GeneratorError{Kind: KindLesson, Err: errEmptyOutput}
	}
	if err := gen.Validate(); err != nil {
		return nil, &util.GeneratorError{Kind: KindLesson, Err: err}
	}

	return s.create(ctx, &model.Lesson{
		Title:       strings.TrimSpace(gen.Title),
		Description: gen.Description,
		PDFPath:     pdfPath,
		Items:       gen.Items,
	})
}

func (s *LessonService) create(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error) {
	// 新课程总是未激活，ID 在 BeforeCreate 中生成
	lesson.ID = ""
	lesson.IsActive = false
	if err := s.Repo.CreateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	logger.Log.Info("Lesson created",
		zap.String("lesson_id", lesson.ID),
		zap.Int("items", len(lesson.Items)),
	)
	return lesson, nil
}

func (s *LessonService) Get(ctx context.Context, id string) (*model.Lesson, error) {
	return s.Repo.GetLesson(ctx, id)
}

func (s *LessonService) List(ctx context.Context) ([]model.LessonSummary, error) {
	return s.Repo.ListLessons(ctx)
}

func (s *LessonService) GetActive(ctx context.Context) (*model.Lesson, error) {
	return s.Repo.GetActiveLesson(ctx)
}

// Activate 目标不存在时不影响其他课程
func (s *LessonService) Activate(ctx context.Context, id string) error {
	if err := s.Repo.ActivateExclusive(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("Lesson activated", zap.String("lesson_id", id))
	return nil
}

func (s *LessonService) Deactivate(ctx context.Context, id string) error {
	if err := s.Repo.SetLessonActive(ctx, id, false); err != nil {
		return err
	}
	logger.Log.Info("Lesson deactivated", zap.String("lesson_id", id))
	return nil
}

func (s *LessonService) SetStatus(ctx context.Context, id string, req SetStatusReq) error {
	if req.IsActive == nil {
		return util.NewValidationError("", "isActive")
	}
	if *req.IsActive {
		return s.Activate(ctx, id)
	}
	return s.Deactivate(ctx, id)
}

// Discard 撤销刚创建的课程，只删除数据库记录，文件由调用方处理
func (s *LessonService) Discard(ctx context.Context, id string) error {
	removed, err := s.Repo.DeleteLesson(ctx, id)
	if err != nil {
		return err
	}
	logger.Log.Info("Lesson discarded",
		zap.String("lesson_id", id),
		zap.Int64("answers_removed", removed),
	)
	return nil
}

// Remove 删除课程及其全部答题记录，随后尽力清理上传的讲义文件
func (s *LessonService) Remove(ctx context.Context, id string) error {
	lesson, err := s.Repo.GetLesson(ctx, id)
	if err != nil {
		return err
	}

	removed, err := s.Repo.DeleteLesson(ctx, id)
	if err != nil {
		return err
	}
	logger.Log.Info("Lesson deleted",
		zap.String("lesson_id", id),
		zap.Int64("answers_removed", removed),
	)

	if lesson.PDFPath != "" && s.Storage != nil {
		if err := s.Storage.Delete(ctx, lesson.PDFPath); err != nil {
			logger.Log.Warn("Failed to delete lesson upload", zap.String("lesson_id", id), zap.String("key", lesson.PDFPath), zap.Error(err))
		}
	}
	return nil
}
