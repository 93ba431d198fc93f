package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondError(c, err)

	var body ErrorResponse
	if decodeErr := json.Unmarshal(rec.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("decode body: %v (%s)", decodeErr, rec.Body.String())
	}
	return rec, body
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", NewValidationError("", "studentId"), http.StatusBadRequest},
		{"not found", NewNotFoundError("lesson", "x"), http.StatusNotFound},
		{"duplicate", &DuplicateSubmissionError{LessonID: "l", ItemIndex: 1, StudentID: "s"}, http.StatusConflict},
		{"storage", WrapStorage("insert answer", errors.New("disk full")), http.StatusInternalServerError},
		{"generator", &GeneratorError{Kind: "quiz", Err: errors.New("bad json")}, http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("load: %w", NewNotFoundError("lesson", "y")), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := respond(t, tc.err)
			if rec.Code != tc.code {
				t.Fatalf("status: got=%d want=%d", rec.Code, tc.code)
			}
			if body.Error == "" {
				t.Fatal("error message should not be empty")
			}
		})
	}
}

func TestRespondErrorValidationDetails(t *testing.T) {
	_, body := respond(t, NewValidationError("", "lessonId", "studentId"))

	fields, ok := body.Details.([]interface{})
	if !ok || len(fields) != 2 || fields[1] != "studentId" {
		t.Fatalf("details: got=%#v", body.Details)
	}
}

func TestRespondErrorGeneratorKeepsMessage(t *testing.T) {
	_, body := respond(t, &GeneratorError{Kind: "lesson", Err: errors.New("upstream 502")})
	if body.Details != "upstream 502" {
		t.Fatalf("details: got=%#v", body.Details)
	}
}

func TestClampCount(t *testing.T) {
	cases := map[int]int{0: 5, -3: 1, 1: 1, 7: 7, 20: 20, 99: 20}
	for in, want := range cases {
		if got := ClampCount(in); got != want {
			t.Fatalf("ClampCount(%d): got=%d want=%d", in, got, want)
		}
	}
}

func TestParseIndexAndTruncate(t *testing.T) {
	if idx, ok := ParseIndex("0"); !ok || idx != 0 {
		t.Fatalf("ParseIndex(0): got=%d ok=%v", idx, ok)
	}
	for _, bad := range []string{"-1", "abc", ""} {
		if _, ok := ParseIndex(bad); ok {
			t.Fatalf("ParseIndex(%q) should fail", bad)
		}
	}
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("Truncate: got=%q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("Truncate with no limit: got=%q", got)
	}
}
