package repository

import (
	"context"
	"errors"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/util"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// TallyRow 某一项按答案文本分组的计数
type TallyRow struct {
	Answer string `json:"answer"`
	Count  int64  `json:"count"`
}

// ItemTallyRow 课程维度的分组计数，带题目下标和类型
type ItemTallyRow struct {
	ItemIndex int            `json:"itemIndex"`
	ItemType  model.ItemKind `json:"itemType"`
	Answer    string         `json:"answer"`
	Count     int64          `json:"count"`
}

type LessonResultRows struct {
	Tallies        []ItemTallyRow
	UniqueStudents int64
	Recent         []model.Answer
}

// InsertAnswer 唯一索引冲突返回 DuplicateSubmissionError
func (r *AnswerRepository) InsertAnswer(ctx context.Context, answer *model.Answer) (uint, error) {
	err := r.DB.WithContext(ctx).Create(answer).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, &util.DuplicateSubmissionError{
			LessonID:  answer.LessonID,
			ItemIndex: answer.ItemIndex,
			StudentID: answer.StudentID,
		}
	}
	if err != nil {
		return 0, util.WrapStorage("insert answer", err)
	}
	return answer.ID, nil
}

func (r *AnswerRepository) FindAnswer(ctx context.Context, lessonID string, itemIndex int, studentID string) (*model.Answer, bool, error) {
	var answer model.Answer
	res := r.DB.WithContext(ctx).
		Where("lesson_id = ? AND item_index = ? AND student_id = ?", lessonID, itemIndex, studentID).
		Limit(1).
		Find(&answer)
	if res.Error != nil {
		return nil, false, util.WrapStorage("find answer", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &answer, true, nil
}

// AnswerTally 按数量降序，数量相同时按答案文本升序
func (r *AnswerRepository) AnswerTally(ctx context.Context, lessonID string, itemIndex int) ([]TallyRow, error) {
	rows := make([]TallyRow, 0)
	err := r.DB.WithContext(ctx).
		Model(&model.Answer{}).
		Select("answer, COUNT(*) AS count").
		Where("lesson_id = ? AND item_index = ?", lessonID, itemIndex).
		Group("answer").
		Order("COUNT(*) DESC, answer ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, util.WrapStorage("tally answers", err)
	}
	return rows, nil
}

func (r *AnswerRepository) LessonResults(ctx context.Context, lessonID string) (*LessonResultRows, error) {
	db := r.DB.WithContext(ctx)
	out := &LessonResultRows{
		Tallies: make([]ItemTallyRow, 0),
		Recent:  make([]model.Answer, 0),
	}

	err := db.Model(&model.Answer{}).
		Select("item_index, item_type, answer, COUNT(*) AS count").
		Where("lesson_id = ?", lessonID).
		Group("item_index, item_type, answer").
		Order("item_index ASC, COUNT(*) DESC, answer ASC").
		Scan(&out.Tallies).Error
	if err != nil {
		return nil, util.WrapStorage("lesson tallies", err)
	}

	err = db.Model(&model.Answer{}).
		Where("lesson_id = ?", lessonID).
		Distinct("student_id").
		Count(&out.UniqueStudents).Error
	if err != nil {
		return nil, util.WrapStorage("count students", err)
	}

	err = db.Where("lesson_id = ?", lessonID).
		Order("submitted_at DESC, id DESC").
		Limit(util.RecentActivityLimit).
		Find(&out.Recent).Error
	if err != nil {
		return nil, util.WrapStorage("recent answers", err)
	}

	return out, nil
}

func (r *AnswerRepository) StudentProgress(ctx context.Context, lessonID, studentID string) ([]model.Answer, error) {
	answers := make([]model.Answer, 0)
	err := r.DB.WithContext(ctx).
		Where("lesson_id = ? AND student_id = ?", lessonID, studentID).
		Order("item_index ASC").
		Find(&answers).Error
	if err != nil {
		return nil, util.WrapStorage("student progress", err)
	}
	return answers, nil
}

func (r *AnswerRepository) CountAnswers(ctx context.Context, lessonID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Answer{}).Where("lesson_id = ?", lessonID).Count(&count).Error
	if err != nil {
		return 0, util.WrapStorage("count answers", err)
	}
	return count, nil
}
