package service

import (
	"encoding/base64"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

type QRService struct {
	PublicURL string
}

func NewQRService(publicURL string) *QRService {
	return &QRService{PublicURL: strings.TrimRight(publicURL, "/")}
}

type LessonQR struct {
	URL    string `json:"url"`
	QRCode string `json:"qrCode"`
}

func (s *QRService) LessonURL(lessonID string) string {
	return s.PublicURL + "/lesson/" + lessonID
}

// LessonQR 返回课程链接以及 PNG 二维码的 data URL
func (s *QRService) LessonQR(lessonID string) (*LessonQR, error) {
	url := s.LessonURL(lessonID)
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		return nil, err
	}
	return &LessonQR{
		URL:    url,
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}
