package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"lecturelab_backend/internal/util"

	"github.com/ledongthuc/pdf"
)

// TextExtractor 从讲义文件中提取纯文本
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// ExtractText 按页顺序拼接全部文本；扫描件等没有文本层的文件返回 ValidationError
func (s *PDFService) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	// 解析库遇到损坏的文件会 panic
	defer func() {
		if r := recover(); r != nil {
			err = util.NewValidationError(fmt.Sprintf("unreadable pdf: %v", r), "pdf")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", util.NewValidationError("unreadable pdf: "+err.Error(), "pdf")
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", util.NewValidationError(fmt.Sprintf("unreadable pdf page %d: %v", i, err), "pdf")
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", util.NewValidationError("no extractable text in pdf", "pdf")
	}
	return text, nil
}

// readAllLimited 读取上传内容，超出 limit 时报错
func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, util.NewValidationError(fmt.Sprintf("file exceeds %d bytes", limit), "pdf")
	}
	return data, nil
}
