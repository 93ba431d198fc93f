package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/testutil"
	"lecturelab_backend/internal/util"
)

func TestAnswerRepositoryInsertAndFind(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewAnswerRepository(db)
	lesson := testutil.SeedLesson(t, ctx, db, "L", false)

	ans := &model.Answer{LessonID: lesson.ID, ItemIndex: 0, StudentID: "s1", Value: "seen", ItemType: model.ItemText}
	id, err := repo.InsertAnswer(ctx, ans)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected surrogate id")
	}
	if ans.ItemID != "item_0" {
		t.Fatalf("default item id: got=%q", ans.ItemID)
	}
	if ans.SubmittedAt.IsZero() {
		t.Fatal("submittedAt not set")
	}

	found, ok, err := repo.FindAnswer(ctx, lesson.ID, 0, "s1")
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if found.ID != id {
		t.Fatalf("find id: got=%d want=%d", found.ID, id)
	}

	if _, ok, err := repo.FindAnswer(ctx, lesson.ID, 1, "s1"); err != nil || ok {
		t.Fatalf("unexpected match: ok=%v err=%v", ok, err)
	}
}

func TestAnswerRepositoryUniqueTriple(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewAnswerRepository(db)
	lesson := testutil.SeedLesson(t, ctx, db, "L", false)

	first := &model.Answer{LessonID: lesson.ID, ItemIndex: 1, StudentID: "s1", Value: "A", ItemType: model.ItemQuiz}
	if _, err := repo.InsertAnswer(ctx, first); err != nil {
		t.Fatalf("insert: %v", err)
	}

	second := &model.Answer{LessonID: lesson.ID, ItemIndex: 1, StudentID: "s1", Value: "B", ItemType: model.ItemQuiz}
	_, err := repo.InsertAnswer(ctx, second)
	var dup *util.DuplicateSubmissionError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateSubmissionError, got %v", err)
	}
	if dup.StudentID != "s1" || dup.ItemIndex != 1 {
		t.Fatalf("duplicate error fields: %+v", dup)
	}

	if n, _ := repo.CountAnswers(ctx, lesson.ID); n != 1 {
		t.Fatalf("answer count: got=%d want=1", n)
	}
}

func TestAnswerRepositoryTallyOrdering(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewAnswerRepository(db)
	lesson := testutil.SeedLesson(t, ctx, db, "L", false)

	for student, value := range map[string]string{"s1": "C", "s2": "A", "s3": "C", "s4": "B", "s5": "A", "s6": "D"} {
		testutil.SeedAnswer(t, ctx, db, lesson.ID, 1, student, value)
	}
	testutil.SeedAnswer(t, ctx, db, lesson.ID, 2, "s1", "Yes")

	rows, err := repo.AnswerTally(ctx, lesson.ID, 1)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	want := []TallyRow{{"A", 2}, {"C", 2}, {"B", 1}, {"D", 1}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("tally: got=%v want=%v", rows, want)
	}

	empty, err := repo.AnswerTally(ctx, lesson.ID, 5)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no rows, got %v", empty)
	}
}

func TestAnswerRepositoryLessonResults(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewAnswerRepository(db)
	lesson := testutil.SeedLesson(t, ctx, db, "L", false)

	testutil.SeedAnswer(t, ctx, db, lesson.ID, 1, "s1", "A")
	testutil.SeedAnswer(t, ctx, db, lesson.ID, 1, "s2", "B")
	testutil.SeedAnswer(t, ctx, db, lesson.ID, 1, "s3", "A")
	testutil.SeedAnswer(t, ctx, db, lesson.ID, 2, "s1", "Yes")
	for i := 0; i < 12; i++ {
		testutil.SeedAnswer(t, ctx, db, lesson.ID, 0, "reader"+string(rune('a'+i)), "seen")
	}

	res, err := repo.LessonResults(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if res.UniqueStudents != 15 {
		t.Fatalf("unique students: got=%d want=15", res.UniqueStudents)
	}
	if len(res.Recent) != util.RecentActivityLimit {
		t.Fatalf("recent: got=%d want=%d", len(res.Recent), util.RecentActivityLimit)
	}
	for i := 1; i < len(res.Recent); i++ {
		if res.Recent[i-1].SubmittedAt.Before(res.Recent[i].SubmittedAt) {
			t.Fatal("recent activity not ordered by submittedAt desc")
		}
	}

	var item1 []ItemTallyRow
	for _, row := range res.Tallies {
		if row.ItemIndex == 1 {
			item1 = append(item1, row)
		}
	}
	if len(item1) != 2 || item1[0].Answer != "A" || item1[0].Count != 2 {
		t.Fatalf("item 1 tallies: %v", item1)
	}

	again, err := repo.LessonResults(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if !reflect.DeepEqual(res, again) {
		t.Fatal("repeated results should be identical")
	}
}

func TestAnswerRepositoryStudentProgress(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewAnswerRepository(db)
	lesson := testutil.SeedLesson(t, ctx, db, "L", false)

	testutil.SeedAnswer(t, ctx, db, lesson.ID, 2, "s1", "Yes")
	testutil.SeedAnswer(t, ctx, db, lesson.ID, 0, "s1", "seen")
	testutil.SeedAnswer(t, ctx, db, lesson.ID, 1, "s2", "A")

	answers, err := repo.StudentProgress(ctx, lesson.ID, "s1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(answers) != 2 || answers[0].ItemIndex != 0 || answers[1].ItemIndex != 2 {
		t.Fatalf("progress order: %+v", answers)
	}

	none, err := repo.StudentProgress(ctx, lesson.ID, "nobody")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty progress, got %v", none)
	}
}
