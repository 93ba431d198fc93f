package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"lecturelab_backend/internal/config"
	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/repository"
	"lecturelab_backend/internal/service"
	"lecturelab_backend/internal/testutil"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubExtractor struct{}

func (stubExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	return "lecture text", nil
}

type stubGenerator struct{ count int }

func (g *stubGenerator) GenerateLesson(ctx context.Context, text string, itemCount int) (*model.GeneratedLesson, error) {
	g.count = itemCount
	return &model.GeneratedLesson{Title: "From PDF", Items: testutil.ScenarioItems()}, nil
}

func newUploadRouter(t *testing.T) (*gin.Engine, *stubGenerator) {
	t.Helper()
	db := testutil.DB(t)
	storage := service.NewStorageService(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	lessons := service.NewLessonService(repository.NewLessonRepository(db), storage)
	gen := &stubGenerator{}
	uploads := service.NewUploadService(storage, stubExtractor{}, gen, lessons, service.NewQRService("http://class.local"), 1<<20, 5)

	r := gin.New()
	r.POST("/upload-pdf", NewUploadController(uploads).UploadPDF)
	return r, gen
}

func multipartRequest(t *testing.T, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("pdf", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(data)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var pdfBytes = []byte("%PDF-1.4\n%%EOF\n")

func TestUploadPDFCreatesLesson(t *testing.T) {
	r, gen := newUploadRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "lecture.pdf", pdfBytes, map[string]string{"itemCount": "7"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var out struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		ItemCount int    `json:"itemCount"`
		URL       string `json:"url"`
		QRCode    string `json:"qrCode"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID == "" || out.Title != "From PDF" || out.ItemCount != 3 || out.QRCode == "" {
		t.Fatalf("unexpected response %s", w.Body.String())
	}
	if gen.count != 7 {
		t.Fatalf("itemCount not forwarded, got %d", gen.count)
	}
}

func TestUploadPDFRejectsBadRequests(t *testing.T) {
	cases := map[string]*http.Request{}
	r, _ := newUploadRouter(t)

	cases["missing file"] = multipartRequest(t, "", nil, nil)
	cases["wrong extension"] = multipartRequest(t, "slides.pptx", pdfBytes, nil)
	cases["bad item count"] = multipartRequest(t, "lecture.pdf", pdfBytes, map[string]string{"itemCount": "many"})
	cases["not a pdf"] = multipartRequest(t, "lecture.pdf", []byte("hello world"), nil)

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
			}
		})
	}
}
