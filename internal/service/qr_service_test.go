package service

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"
)

func TestQRServiceLessonQR(t *testing.T) {
	svc := NewQRService("https://lecture.example.com/")

	qr, err := svc.LessonQR("abc-123")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	if qr.URL != "https://lecture.example.com/lesson/abc-123" {
		t.Fatalf("unexpected url %q", qr.URL)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(qr.QRCode, prefix) {
		t.Fatalf("unexpected data url prefix %.30q", qr.QRCode)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(qr.QRCode, prefix))
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != qrSize || b.Dy() != qrSize {
		t.Fatalf("unexpected size %v", b)
	}
}
