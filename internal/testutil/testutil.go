package testutil

import (
	"context"
	"fmt"
	"testing"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/pkg/database"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB 每个测试一个独立的内存 sqlite 库，已完成迁移
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), gormLogger.Silent)
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

// ScenarioItems 一段文本、一道单选题、一个二选一投票
func ScenarioItems() model.Items {
	return model.Items{
		model.TextItem{Title: "Cells", Content: "Cells are the basic unit of life."},
		model.MCQQuizItem{
			Question:      "Which organelle produces ATP?",
			Options:       model.MCQOptions{A: "Mitochondria", B: "Nucleus", C: "Vacuole", D: "Membrane"},
			CorrectAnswer: "A",
		},
		model.Poll2Item{Question: "Was this clear?", Options: []string{"Yes", "No"}},
	}
}

func SeedLesson(tb testing.TB, ctx context.Context, db *gorm.DB, title string, active bool) *model.Lesson {
	tb.Helper()
	lesson := &model.Lesson{
		Title:       title,
		Description: title + " description",
		Items:       ScenarioItems(),
	}
	if err := db.WithContext(ctx).Create(lesson).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	if active {
		if err := db.WithContext(ctx).Model(lesson).Update("is_active", true).Error; err != nil {
			tb.Fatalf("seed lesson active flag: %v", err)
		}
		lesson.IsActive = true
	}
	return lesson
}

func SeedAnswer(tb testing.TB, ctx context.Context, db *gorm.DB, lessonID string, itemIndex int, studentID, value string) *model.Answer {
	tb.Helper()
	ans := &model.Answer{
		LessonID:  lessonID,
		ItemIndex: itemIndex,
		ItemID:    model.DefaultItemID(itemIndex),
		StudentID: studentID,
		Value:     value,
		ItemType:  model.ItemQuiz,
	}
	if err := db.WithContext(ctx).Create(ans).Error; err != nil {
		tb.Fatalf("seed answer: %v", err)
	}
	return ans
}
