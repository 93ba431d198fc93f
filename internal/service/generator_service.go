package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/util"
	"lecturelab_backend/pkg/logger"
	"lecturelab_backend/pkg/monitoring"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

const (
	KindLesson     = "lesson"
	KindQuiz       = "quiz"
	KindPoll       = "poll"
	KindSummary    = "summary"
	KindKeyPoints  = "keypoints"
	KindFlashcards = "flashcards"
)

var errEmptyOutput = errors.New("model returned no content")

// validatable 生成结果在 schema 校验之后的业务校验
type validatable interface {
	Validate() error
}

type GeneratorService struct {
	llm           LLMClient
	maxInputChars int
}

func NewGeneratorService(llm LLMClient, maxInputChars int) *GeneratorService {
	return &GeneratorService{llm: llm, maxInputChars: maxInputChars}
}

const systemPrompt = "You are an assistant that turns lecture material into classroom content for instructors. " +
	"Use only facts present in the provided text. Respond with JSON that matches the given schema exactly."

func (s *GeneratorService) GenerateLesson(ctx context.Context, text string, itemCount int) (*model.GeneratedLesson, error) {
	n := util.ClampCount(itemCount)
	prompt := fmt.Sprintf("Create an interactive lesson with exactly %d items from the lecture text below. "+
		"Mix explanatory text items (type \"text\"), quiz questions (type \"quiz\", quizType \"MCQ\" with options A-D "+
		"or \"TF\" with correctAnswer \"true\"/\"false\") and polls (type \"poll\", pollType \"POLL_2\" with 2 options "+
		"or \"POLL_4\" with 4 options). Give the lesson a short title and a one sentence description.", n)

	var out model.GeneratedLesson
	if err := s.generate(ctx, KindLesson, prompt, text, lessonSchema(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GeneratorService) GenerateQuiz(ctx context.Context, text string, count int) (*model.QuizContent, error) {
	n := util.ClampCount(count)
	prompt := fmt.Sprintf("Write exactly %d quiz questions about the lecture text below. "+
		"Use multiple choice (quizType \"MCQ\", options A-D, one correct letter) and true/false (quizType \"TF\"). "+
		"Explain each correct answer in one sentence.", n)

	var out model.QuizContent
	if err := s.generate(ctx, KindQuiz, prompt, text, quizSchema(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GeneratorService) GeneratePolls(ctx context.Context, text string, count int) (*model.PollContent, error) {
	n := util.ClampCount(count)
	prompt := fmt.Sprintf("Write exactly %d opinion or understanding-check polls about the lecture text below. "+
		"Each poll is either \"POLL_2\" with 2 options or \"POLL_4\" with 4 options. Polls have no correct answer.", n)

	var out model.PollContent
	if err := s.generate(ctx, KindPoll, prompt, text, pollSchema(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GeneratorService) GenerateSummary(ctx context.Context, text string) (*model.SummaryContent, error) {
	prompt := "Summarize the lecture text below for students: one overview paragraph and a few titled sections."

	var out model.SummaryContent
	if err := s.generate(ctx, KindSummary, prompt, text, summarySchema(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GeneratorService) GenerateKeyPoints(ctx context.Context, text string, count int) (*model.KeyPointsContent, error) {
	n := util.ClampCount(count)
	prompt := fmt.Sprintf("Extract exactly %d key points from the lecture text below, each with a short explanation.", n)

	var out model.KeyPointsContent
	if err := s.generate(ctx, KindKeyPoints, prompt, text, keyPointsSchema(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GeneratorService) GenerateFlashcards(ctx context.Context, text string, count int) (*model.FlashcardContent, error) {
	n := util.ClampCount(count)
	prompt := fmt.Sprintf("Create exactly %d study flashcards from the lecture text below. "+
		"The front holds a term or question, the back a concise answer.", n)

	var out model.FlashcardContent
	if err := s.generate(ctx, KindFlashcards, prompt, text, flashcardSchema(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GeneratorService) generate(ctx context.Context, kind, instruction, text string, schema map[string]interface{}, out validatable) (err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return util.NewValidationError("text is required", "text")
	}
	text = util.Truncate(text, s.maxInputChars)

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		monitoring.GeneratorRequests.WithLabelValues(kind, status).Inc()
		monitoring.GeneratorDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	user := instruction + "\n\nLecture text:\n" + text
	raw, err := s.llm.ChatJSON(ctx, systemPrompt, user, kind+"_content", schema)
	if err != nil {
		return s.fail(kind, err)
	}

	if err := validateAgainstSchema(schema, raw); err != nil {
		return s.fail(kind, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return s.fail(kind, fmt.Errorf("decode model output: %w", err))
	}
	if err := out.Validate(); err != nil {
		return s.fail(kind, fmt.Errorf("invalid model output: %w", err))
	}

	logger.Log.Info("Content generated",
		zap.String("kind", kind),
		zap.Int("input_chars", len([]rune(text))),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *GeneratorService) fail(kind string, err error) error {
	logger.Log.Warn("Content generation failed", zap.String("kind", kind), zap.Error(err))
	return &util.GeneratorError{Kind: kind, Err: err}
}

func validateAgainstSchema(schema map[string]interface{}, raw string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New("model output does not match schema: " + strings.Join(msgs, "; "))
}
