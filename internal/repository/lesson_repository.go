package repository

import (
	"context"
	"errors"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/util"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	err := r.DB.WithContext(ctx).Create(lesson).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &util.StorageError{Op: "create lesson", Err: err, Constraint: true}
	}
	return util.WrapStorage("create lesson", err)
}

func (r *LessonRepository) GetLesson(ctx context.Context, id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.WithContext(ctx).First(&lesson, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFoundError("lesson", id)
	}
	if err != nil {
		return nil, util.WrapStorage("get lesson", err)
	}
	return &lesson, nil
}

// GetActiveLesson 返回当前激活的课程
func (r *LessonRepository) GetActiveLesson(ctx context.Context) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.WithContext(ctx).Where("is_active = ?", true).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFoundError("active lesson", "")
	}
	if err != nil {
		return nil, util.WrapStorage("get active lesson", err)
	}
	return &lesson, nil
}

// ListLessons 列表视图只查询摘要字段，不读取 items
func (r *LessonRepository) ListLessons(ctx context.Context) ([]model.LessonSummary, error) {
	lessons := make([]model.LessonSummary, 0)
	err := r.DB.WithContext(ctx).
		Model(&model.Lesson{}).
		Select("id, title, description, created_at, is_active").
		Order("created_at desc, id desc").
		Scan(&lessons).Error
	if err != nil {
		return nil, util.WrapStorage("list lessons", err)
	}
	return lessons, nil
}

func (r *LessonRepository) SetLessonActive(ctx context.Context, id string, active bool) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureLessonExists(tx, id); err != nil {
			return err
		}
		return tx.Model(&model.Lesson{}).Where("id = ?", id).Update("is_active", active).Error
	})
	return wrapTx("set lesson active", err)
}

// ActivateExclusive 先确认目标存在，再用一条语句把目标置为激活、其余全部置为未激活
func (r *LessonRepository) ActivateExclusive(ctx context.Context, id string) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureLessonExists(tx, id); err != nil {
			return err
		}
		return tx.Model(&model.Lesson{}).
			Where("1 = 1").
			UpdateColumn("is_active", gorm.Expr("(id = ?)", id)).Error
	})
	return wrapTx("activate lesson", err)
}

// DeleteLesson 存在性检查 -> 删除答题记录 -> 删除课程，不存在时不产生任何副作用
func (r *LessonRepository) DeleteLesson(ctx context.Context, id string) (int64, error) {
	var removedAnswers int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureLessonExists(tx, id); err != nil {
			return err
		}

		res := tx.Where("lesson_id = ?", id).Delete(&model.Answer{})
		if res.Error != nil {
			return res.Error
		}
		removedAnswers = res.RowsAffected

		res = tx.Delete(&model.Lesson{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.NewNotFoundError("lesson", id)
		}
		return nil
	})
	if err != nil {
		return 0, wrapTx("delete lesson", err)
	}
	return removedAnswers, nil
}

func ensureLessonExists(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&model.Lesson{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return util.NewNotFoundError("lesson", id)
	}
	return nil
}

// wrapTx 事务内的业务错误原样返回，其余包装为 StorageError
func wrapTx(op string, err error) error {
	var notFound *util.NotFoundError
	if err == nil || errors.As(err, &notFound) {
		return err
	}
	return util.WrapStorage(op, err)
}
