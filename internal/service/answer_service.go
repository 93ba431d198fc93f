package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/repository"
	"lecturelab_backend/internal/util"
	"lecturelab_backend/pkg/logger"
	"lecturelab_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// ResultsPublisher 作答成功后推送最新统计
type ResultsPublisher interface {
	PublishItemStats(lessonID string, stats *ItemStats)
}

type AnswerService struct {
	Answers   *repository.AnswerRepository
	Lessons   *repository.LessonRepository
	Publisher ResultsPublisher
}

func NewAnswerService(answers *repository.AnswerRepository, lessons *repository.LessonRepository, publisher ResultsPublisher) *AnswerService {
	return &AnswerService{Answers: answers, Lessons: lessons, Publisher: publisher}
}

// SubmitAnswerReq itemIndex 用指针区分“未传”和下标 0
type SubmitAnswerReq struct {
	LessonID  string `json:"lessonId"`
	ItemIndex *int   `json:"itemIndex"`
	ItemID    string `json:"itemId"`
	StudentID string `json:"studentId"`
	Answer    string `json:"answer"`
	ItemType  string `json:"itemType"`
}

type SubmitResult struct {
	ID          uint      `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
	Message     string    `json:"message"`
}

type ItemStats struct {
	Answers        []repository.TallyRow `json:"answers"`
	TotalResponses int64                 `json:"totalResponses"`
	ItemIndex      int                   `json:"itemIndex"`
}

type ItemResult struct {
	ItemType       model.ItemKind        `json:"itemType"`
	Answers        []repository.TallyRow `json:"answers"`
	TotalResponses int64                 `json:"totalResponses"`
	CorrectAnswer  string                `json:"correctAnswer,omitempty"`
}

type LessonReport struct {
	Lesson         *model.Lesson          `json:"lesson"`
	UniqueStudents int64                  `json:"uniqueStudents"`
	Results        map[string]*ItemResult `json:"results"`
	RecentActivity []model.Answer         `json:"recentActivity"`
}

type StudentProgress struct {
	AnsweredItems []int          `json:"answeredItems"`
	Answers       []model.Answer `json:"answers"`
}

func (req SubmitAnswerReq) missingFields() []string {
	var missing []string
	if strings.TrimSpace(req.LessonID) == "" {
		missing = append(missing, "lessonId")
	}
	if req.ItemIndex == nil {
		missing = append(missing, "itemIndex")
	}
	if strings.TrimSpace(req.StudentID) == "" {
		missing = append(missing, "studentId")
	}
	if strings.TrimSpace(req.Answer) == "" {
		missing = append(missing, "answer")
	}
	return missing
}

// Submit 每个 (课程, 题目, 学生) 只接受一次作答。
// 先查重作为快速路径，唯一索引兜底并发提交。
func (s *AnswerService) Submit(ctx context.Context, req SubmitAnswerReq) (*SubmitResult, error) {
	if missing := req.missingFields(); len(missing) > 0 {
		return nil, util.NewValidationError("", missing...)
	}

	idx := *req.ItemIndex
	if idx < 0 {
		return nil, util.NewValidationError("itemIndex must not be negative", "itemIndex")
	}

	lesson, err := s.Lessons.GetLesson(ctx, req.LessonID)
	if err != nil {
		return nil, err
	}
	if idx >= len(lesson.Items) {
		return nil, util.NewValidationError(
			fmt.Sprintf("itemIndex %d out of range, lesson has %d items", idx, len(lesson.Items)),
			"itemIndex",
		)
	}

	kind := lesson.Items[idx].Kind()
	if req.ItemType != "" && model.ItemKind(req.ItemType) != kind {
		return nil, util.NewValidationError(
			fmt.Sprintf("itemType %q does not match item %d (%s)", req.ItemType, idx, kind),
			"itemType",
		)
	}

	if _, found, err := s.Answers.FindAnswer(ctx, req.LessonID, idx, req.StudentID); err != nil {
		return nil, err
	} else if found {
		return nil, &util.DuplicateSubmissionError{LessonID: req.LessonID, ItemIndex: idx, StudentID: req.StudentID}
	}

	answer := &model.Answer{
		LessonID:  req.LessonID,
		ItemIndex: idx,
		ItemID:    req.ItemID,
		StudentID: req.StudentID,
		Value:     req.Answer,
		ItemType:  kind,
	}
	id, err := s.Answers.InsertAnswer(ctx, answer)
	if err != nil {
		return nil, err
	}

	monitoring.AnswersSubmitted.WithLabelValues(string(kind)).Inc()
	logger.Log.Debug("Answer recorded",
		zap.String("lesson_id", req.LessonID),
		zap.Int("item_index", idx),
		zap.String("student_id", req.StudentID),
	)

	s.publish(ctx, req.LessonID, idx)

	return &SubmitResult{ID: id, SubmittedAt: answer.SubmittedAt, Message: "Answer submitted successfully"}, nil
}

func (s *AnswerService) publish(ctx context.Context, lessonID string, itemIndex int) {
	if s.Publisher == nil {
		return
	}
	stats, err := s.ItemStatistics(ctx, lessonID, itemIndex)
	if err != nil {
		logger.Log.Warn("Failed to compute live results", zap.String("lesson_id", lessonID), zap.Error(err))
		return
	}
	s.Publisher.PublishItemStats(lessonID, stats)
}

func (s *AnswerService) ItemStatistics(ctx context.Context, lessonID string, itemIndex int) (*ItemStats, error) {
	rows, err := s.Answers.AnswerTally(ctx, lessonID, itemIndex)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, r := range rows {
		total += r.Count
	}
	return &ItemStats{Answers: rows, TotalResponses: total, ItemIndex: itemIndex}, nil
}

// LessonReport 课程不存在（包括已删除）时返回 NotFoundError
func (s *AnswerService) LessonReport(ctx context.Context, lessonID string) (*LessonReport, error) {
	lesson, err := s.Lessons.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	rows, err := s.Answers.LessonResults(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*ItemResult)
	for _, row := range rows.Tallies {
		key := strconv.Itoa(row.ItemIndex)
		res, ok := results[key]
		if !ok {
			res = &ItemResult{ItemType: row.ItemType, Answers: make([]repository.TallyRow, 0)}
			if row.ItemIndex < len(lesson.Items) {
				if correct, ok := model.CorrectAnswer(lesson.Items[row.ItemIndex]); ok {
					res.CorrectAnswer = correct
				}
			}
			results[key] = res
		}
		res.Answers = append(res.Answers, repository.TallyRow{Answer: row.Answer, Count: row.Count})
		res.TotalResponses += row.Count
	}

	return &LessonReport{
		Lesson:         lesson,
		UniqueStudents: rows.UniqueStudents,
		Results:        results,
		RecentActivity: rows.Recent,
	}, nil
}

func (s *AnswerService) ProgressFor(ctx context.Context, lessonID, studentID string) (*StudentProgress, error) {
	answers, err := s.Answers.StudentProgress(ctx, lessonID, studentID)
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, len(answers))
	for _, a := range answers {
		indices = append(indices, a.ItemIndex)
	}
	return &StudentProgress{AnsweredItems: indices, Answers: answers}, nil
}
