package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/testutil"
	"lecturelab_backend/internal/util"
)

func TestLessonServiceCreateManualValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lessons.CreateManual(ctx, CreateLessonReq{})
	var vErr *util.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(vErr.Fields) != 2 || vErr.Fields[0] != "title" || vErr.Fields[1] != "items" {
		t.Fatalf("unexpected fields %v", vErr.Fields)
	}

	_, err = f.lessons.CreateManual(ctx, CreateLessonReq{
		Title: "Broken",
		Items: model.Items{model.MCQQuizItem{Question: "q", CorrectAnswer: "A"}},
	})
	if !errors.As(err, &vErr) || vErr.Fields[0] != "items" {
		t.Fatalf("expected items validation error, got %v", err)
	}
}

func TestLessonServiceCreateManualIsInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lesson, err := f.lessons.CreateManual(ctx, CreateLessonReq{Title: "  Physics  ", Items: testutil.ScenarioItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lesson.ID == "" || lesson.IsActive || lesson.Title != "Physics" {
		t.Fatalf("unexpected lesson %+v", lesson)
	}
}

func TestLessonServiceCreateFromGeneratedContentRejectsInvalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.lessons.CreateFromGeneratedContent(context.Background(), &model.GeneratedLesson{Title: "Empty"}, "")
	var gErr *util.GeneratorError
	if !errors.As(err, &gErr) {
		t.Fatalf("expected generator error, got %v", err)
	}

	lessons, _ := f.lessons.List(context.Background())
	if len(lessons) != 0 {
		t.Fatalf("nothing should be stored, got %d lessons", len(lessons))
	}
}

// 激活 L1 -> 激活 L2 -> 停用 L2 -> 删除 L1
func TestLessonServiceLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l1, err := f.lessons.CreateManual(ctx, CreateLessonReq{Title: "L1", Items: testutil.ScenarioItems()})
	if err != nil {
		t.Fatalf("create l1: %v", err)
	}
	l2, err := f.lessons.CreateManual(ctx, CreateLessonReq{Title: "L2", Items: testutil.ScenarioItems()})
	if err != nil {
		t.Fatalf("create l2: %v", err)
	}

	if err := f.lessons.Activate(ctx, l1.ID); err != nil {
		t.Fatalf("activate l1: %v", err)
	}
	if err := f.lessons.SetStatus(ctx, l2.ID, SetStatusReq{IsActive: boolPtr(true)}); err != nil {
		t.Fatalf("activate l2: %v", err)
	}

	active, err := f.lessons.GetActive(ctx)
	if err != nil || active.ID != l2.ID {
		t.Fatalf("expected l2 active, got %v %v", active, err)
	}
	got1, _ := f.lessons.Get(ctx, l1.ID)
	if got1.IsActive {
		t.Fatal("l1 should have been deactivated")
	}

	if err := f.lessons.Deactivate(ctx, l2.ID); err != nil {
		t.Fatalf("deactivate l2: %v", err)
	}
	var nf *util.NotFoundError
	if _, err := f.lessons.GetActive(ctx); !errors.As(err, &nf) {
		t.Fatalf("expected no active lesson, got %v", err)
	}

	testutil.SeedAnswer(t, ctx, f.db, l1.ID, 1, "s1", "A")
	if err := f.lessons.Remove(ctx, l1.ID); err != nil {
		t.Fatalf("remove l1: %v", err)
	}
	if _, err := f.lessons.Get(ctx, l1.ID); !errors.As(err, &nf) {
		t.Fatalf("expected l1 gone, got %v", err)
	}
	lessons, _ := f.lessons.List(ctx)
	if len(lessons) != 1 || lessons[0].ID != l2.ID || lessons[0].IsActive {
		t.Fatalf("unexpected remaining lessons %+v", lessons)
	}
}

func TestLessonServiceSetStatusRequiresFlag(t *testing.T) {
	f := newFixture(t)
	lesson := testutil.SeedLesson(t, context.Background(), f.db, "L", false)

	var vErr *util.ValidationError
	if err := f.lessons.SetStatus(context.Background(), lesson.ID, SetStatusReq{}); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLessonServiceRemoveMissing(t *testing.T) {
	f := newFixture(t)
	var nf *util.NotFoundError
	if err := f.lessons.Remove(context.Background(), "missing"); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLessonServiceRemoveDeletesUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key := "uploads/lecture.pdf"
	if _, err := f.storage.Upload(ctx, key, bytes.NewReader([]byte("%PDF-1.4")), 8, util.MimePDF); err != nil {
		t.Fatalf("upload: %v", err)
	}
	lesson, err := f.lessons.CreateManual(ctx, CreateLessonReq{Title: "With pdf", PDFPath: key, Items: testutil.ScenarioItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.lessons.Remove(ctx, lesson.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, "uploads", "lecture.pdf")); !os.IsNotExist(err) {
		t.Fatalf("expected upload removed, stat err = %v", err)
	}
}

func TestLessonServiceDiscardKeepsUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key := "uploads/draft.pdf"
	if _, err := f.storage.Upload(ctx, key, bytes.NewReader([]byte("%PDF-1.4")), 8, util.MimePDF); err != nil {
		t.Fatalf("upload: %v", err)
	}
	lesson, err := f.lessons.CreateManual(ctx, CreateLessonReq{Title: "Draft", PDFPath: key, Items: testutil.ScenarioItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.lessons.Discard(ctx, lesson.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	var nf *util.NotFoundError
	if _, err := f.lessons.Get(ctx, lesson.ID); !errors.As(err, &nf) {
		t.Fatalf("expected lesson gone, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, "uploads", "draft.pdf")); err != nil {
		t.Fatalf("upload should be left to the caller: %v", err)
	}
	if err := f.lessons.Discard(ctx, lesson.ID); !errors.As(err, &nf) {
		t.Fatalf("expected not found on second discard, got %v", err)
	}
}

func boolPtr(b bool) *bool { return &b }
