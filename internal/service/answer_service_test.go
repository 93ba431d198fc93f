package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/repository"
	"lecturelab_backend/internal/testutil"
	"lecturelab_backend/internal/util"
)

func submit(t *testing.T, s *AnswerService, lessonID string, idx int, student, value string) (*SubmitResult, error) {
	t.Helper()
	return s.Submit(context.Background(), SubmitAnswerReq{
		LessonID:  lessonID,
		ItemIndex: intPtr(idx),
		StudentID: student,
		Answer:    value,
	})
}

func TestAnswerServiceItemStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lesson := testutil.SeedLesson(t, ctx, f.db, "L1", true)

	for i, v := range []string{"A", "B", "A"} {
		if _, err := submit(t, f.answers, lesson.ID, 1, fmt.Sprintf("s%d", i), v); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	stats, err := f.answers.ItemStatistics(ctx, lesson.ID, 1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := []repository.TallyRow{{Answer: "A", Count: 2}, {Answer: "B", Count: 1}}
	if !reflect.DeepEqual(stats.Answers, want) || stats.TotalResponses != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	last := f.pub.last()
	if last == nil || last.TotalResponses != 3 || last.ItemIndex != 1 {
		t.Fatalf("expected live update after each submit, got %+v", last)
	}
}

func TestAnswerServiceDuplicateSubmission(t *testing.T) {
	f := newFixture(t)
	lesson := testutil.SeedLesson(t, context.Background(), f.db, "L1", true)

	if _, err := submit(t, f.answers, lesson.ID, 1, "s1", "A"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := submit(t, f.answers, lesson.ID, 1, "s1", "B")
	var dup *util.DuplicateSubmissionError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	stats, _ := f.answers.ItemStatistics(context.Background(), lesson.ID, 1)
	if stats.TotalResponses != 1 || stats.Answers[0].Answer != "A" {
		t.Fatalf("first answer should be kept, got %+v", stats)
	}
}

func TestAnswerServiceMissingFields(t *testing.T) {
	f := newFixture(t)
	lesson := testutil.SeedLesson(t, context.Background(), f.db, "L1", true)

	_, err := f.answers.Submit(context.Background(), SubmitAnswerReq{
		LessonID:  lesson.ID,
		ItemIndex: intPtr(1),
		Answer:    "A",
	})
	var vErr *util.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !reflect.DeepEqual(vErr.Fields, []string{"studentId"}) {
		t.Fatalf("unexpected fields %v", vErr.Fields)
	}

	_, err = f.answers.Submit(context.Background(), SubmitAnswerReq{})
	if !errors.As(err, &vErr) || len(vErr.Fields) != 4 {
		t.Fatalf("expected all fields missing, got %v", err)
	}
}

func TestAnswerServiceItemIndexRules(t *testing.T) {
	f := newFixture(t)
	lesson := testutil.SeedLesson(t, context.Background(), f.db, "L1", false)

	// 下标 0 是合法值，课程未激活也可作答
	if _, err := submit(t, f.answers, lesson.ID, 0, "s1", "read"); err != nil {
		t.Fatalf("index 0: %v", err)
	}

	var vErr *util.ValidationError
	for _, idx := range []int{-1, 3, 100} {
		if _, err := submit(t, f.answers, lesson.ID, idx, "s1", "A"); !errors.As(err, &vErr) {
			t.Fatalf("index %d: expected validation error, got %v", idx, err)
		}
	}
}

func TestAnswerServiceItemTypeFromLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lesson := testutil.SeedLesson(t, ctx, f.db, "L1", true)

	_, err := f.answers.Submit(ctx, SubmitAnswerReq{
		LessonID: lesson.ID, ItemIndex: intPtr(2), StudentID: "s1", Answer: "Yes", ItemType: "quiz",
	})
	var vErr *util.ValidationError
	if !errors.As(err, &vErr) || vErr.Fields[0] != "itemType" {
		t.Fatalf("expected itemType mismatch, got %v", err)
	}

	if _, err := submit(t, f.answers, lesson.ID, 2, "s1", "Yes"); err != nil {
		t.Fatalf("submit without type: %v", err)
	}
	progress, err := f.answers.ProgressFor(ctx, lesson.ID, "s1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress.Answers) != 1 || progress.Answers[0].ItemType != model.ItemPoll || progress.Answers[0].ItemID != "item_2" {
		t.Fatalf("unexpected stored answer %+v", progress.Answers)
	}
}

func TestAnswerServiceUnknownLesson(t *testing.T) {
	f := newFixture(t)
	var nf *util.NotFoundError
	if _, err := submit(t, f.answers, "missing", 0, "s1", "A"); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAnswerServiceLessonReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lesson := testutil.SeedLesson(t, ctx, f.db, "L1", true)

	mustSubmit := func(idx int, student, value string) {
		t.Helper()
		if _, err := submit(t, f.answers, lesson.ID, idx, student, value); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	mustSubmit(1, "s1", "A")
	mustSubmit(1, "s2", "C")
	mustSubmit(2, "s1", "Yes")
	mustSubmit(2, "s3", "No")

	report, err := f.answers.LessonReport(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Lesson.ID != lesson.ID || report.UniqueStudents != 3 || len(report.RecentActivity) != 4 {
		t.Fatalf("unexpected report %+v", report)
	}

	quiz := report.Results["1"]
	if quiz == nil || quiz.TotalResponses != 2 || quiz.CorrectAnswer != "A" || quiz.ItemType != model.ItemQuiz {
		t.Fatalf("unexpected quiz result %+v", quiz)
	}
	poll := report.Results["2"]
	if poll == nil || poll.TotalResponses != 2 || poll.CorrectAnswer != "" || poll.ItemType != model.ItemPoll {
		t.Fatalf("unexpected poll result %+v", poll)
	}
	if _, ok := report.Results["0"]; ok {
		t.Fatal("unanswered item should not appear")
	}
}

func TestAnswerServiceReportForDeletedLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lesson := testutil.SeedLesson(t, ctx, f.db, "L1", true)
	if _, err := submit(t, f.answers, lesson.ID, 1, "s1", "A"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.lessons.Remove(ctx, lesson.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	var nf *util.NotFoundError
	if _, err := f.answers.LessonReport(ctx, lesson.ID); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
	stats, err := f.answers.ItemStatistics(ctx, lesson.ID, 1)
	if err != nil || stats.TotalResponses != 0 {
		t.Fatalf("answers should be gone, got %+v %v", stats, err)
	}
}
