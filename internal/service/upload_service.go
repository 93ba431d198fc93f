package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/util"
	"lecturelab_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 50 << 20

// LessonGenerator 由讲义文本生成课程内容
type LessonGenerator interface {
	GenerateLesson(ctx context.Context, text string, itemCount int) (*model.GeneratedLesson, error)
}

type UploadService struct {
	Storage          *StorageService
	Extractor        TextExtractor
	Generator        LessonGenerator
	Lessons          *LessonService
	QR               *QRService
	MaxBytes         int64
	DefaultItemCount int
}

func NewUploadService(storage *StorageService, extractor TextExtractor, generator LessonGenerator, lessons *LessonService, qr *QRService, maxBytes int64, defaultItemCount int) *UploadService {
	return &UploadService{
		Storage:          storage,
		Extractor:        extractor,
		Generator:        generator,
		Lessons:          lessons,
		QR:               qr,
		MaxBytes:         maxBytes,
		DefaultItemCount: defaultItemCount,
	}
}

// UploadedPDF 控制器从 multipart 中取出的文件
type UploadedPDF struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

type UploadResult struct {
	model.LessonSummary
	ItemCount int    `json:"itemCount"`
	PDFPath   string `json:"pdfPath"`
	URL       string `json:"url"`
	QRCode    string `json:"qrCode"`
}

// CreateLessonFromPDF 校验 -> 存储 -> 提取文本 -> 生成 -> 入库 -> 二维码。
// 存储之后任一步失败都会删除已上传的文件。
func (s *UploadService) CreateLessonFromPDF(ctx context.Context, file UploadedPDF, itemCount int) (result *UploadResult, err error) {
	data, err := s.validate(file)
	if err != nil {
		return nil, err
	}
	if itemCount == 0 {
		itemCount = s.DefaultItemCount
	}

	key, err := s.store(ctx, data)
	if err != nil {
		return nil, util.WrapStorage("store upload", err)
	}
	defer func() {
		if err == nil {
			return
		}
		// 请求可能已被取消，清理使用独立的 context
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if delErr := s.Storage.Delete(cleanupCtx, key); delErr != nil {
			logger.Log.Warn("Failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
	}()

	text, err := s.Extractor.ExtractText(ctx, data)
	if err != nil {
		return nil, err
	}

	generated, err := s.Generator.GenerateLesson(ctx, text, itemCount)
	if err != nil {
		return nil, err
	}

	lesson, err := s.Lessons.CreateFromGeneratedContent(ctx, generated, key)
	if err != nil {
		return nil, err
	}

	qr, err := s.QR.LessonQR(lesson.ID)
	if err != nil {
		// 课程已入库，二维码失败时回滚课程，保证文件和课程一起清理
		if delErr := s.Lessons.Discard(ctx, lesson.ID); delErr != nil {
			logger.Log.Error("Failed to roll back lesson", zap.String("lesson_id", lesson.ID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("generate qr code: %w", err)
	}

	logger.Log.Info("Lesson created from pdf",
		zap.String("lesson_id", lesson.ID),
		zap.String("file", file.Filename),
		zap.Int("items", len(lesson.Items)),
	)

	return &UploadResult{
		LessonSummary: lesson.Summary(),
		ItemCount:     len(lesson.Items),
		PDFPath:       key,
		URL:           qr.URL,
		QRCode:        qr.QRCode,
	}, nil
}

func (s *UploadService) validate(file UploadedPDF) ([]byte, error) {
	if !util.IsPDFName(file.Filename) {
		return nil, util.NewValidationError("only PDF files are allowed", "pdf")
	}
	if s.MaxBytes > 0 && file.Size > s.MaxBytes {
		return nil, util.NewValidationError(fmt.Sprintf("file exceeds %d MB", s.MaxBytes>>20), "pdf")
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	data, err := readAllLimited(file.Reader, limit)
	if err != nil {
		return nil, err
	}
	if _, err := util.ValidateMimeType(bytes.NewReader(data), []string{util.MimePDF}); err != nil {
		return nil, util.NewValidationError("only PDF files are allowed: "+err.Error(), "pdf")
	}
	return data, nil
}

func (s *UploadService) store(ctx context.Context, data []byte) (string, error) {
	key := fmt.Sprintf("%s/%d_%s%s", util.UploadPrefix, time.Now().UnixMilli(), randomSuffix(), util.PDFExtension)
	if _, err := s.Storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), util.MimePDF); err != nil {
		return "", err
	}
	return key, nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
