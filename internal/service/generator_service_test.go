package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/util"
)

const validLessonJSON = `{
  "title": "Photosynthesis",
  "description": "How plants make food.",
  "items": [
    {"type": "text", "title": "Intro", "content": "Plants convert light into chemical energy."},
    {"type": "quiz", "quizType": "MCQ", "question": "Where does it happen?",
     "options": {"A": "Chloroplast", "B": "Nucleus", "C": "Root", "D": "Stem"}, "correctAnswer": "A"},
    {"type": "quiz", "quizType": "TF", "question": "Plants need light.", "correctAnswer": "true"},
    {"type": "poll", "pollType": "POLL_4", "question": "Confidence?", "options": ["1", "2", "3", "4"]}
  ]
}`

func TestGeneratorServiceGenerateLesson(t *testing.T) {
	llm := &fakeLLM{response: validLessonJSON}
	gen := NewGeneratorService(llm, 12000)

	lesson, err := gen.GenerateLesson(context.Background(), "Plants use sunlight.", 4)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if lesson.Title != "Photosynthesis" || len(lesson.Items) != 4 {
		t.Fatalf("unexpected lesson %+v", lesson)
	}
	if _, ok := lesson.Items[2].(model.TrueFalseItem); !ok {
		t.Fatalf("item 2 should decode as true/false, got %T", lesson.Items[2])
	}
	if llm.lastName != "lesson_content" {
		t.Fatalf("unexpected schema name %q", llm.lastName)
	}
	if !strings.Contains(llm.lastUser, "exactly 4 items") || !strings.Contains(llm.lastUser, "Plants use sunlight.") {
		t.Fatalf("prompt missing count or text: %q", llm.lastUser)
	}
}

func TestGeneratorServiceRejectsSchemaMismatch(t *testing.T) {
	cases := map[string]string{
		"not json":      `here is your lesson`,
		"missing items": `{"title": "x", "description": "y"}`,
		"bad option":    `{"title": "x", "description": "y", "items": [{"type": "poll", "pollType": "POLL_2", "question": "q", "options": ["only one"]}]}`,
		"bad answer":    `{"title": "x", "description": "y", "items": [{"type": "quiz", "quizType": "TF", "question": "q", "correctAnswer": "maybe"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			gen := NewGeneratorService(&fakeLLM{response: raw}, 12000)
			_, err := gen.GenerateLesson(context.Background(), "text", 3)
			var gErr *util.GeneratorError
			if !errors.As(err, &gErr) || gErr.Kind != KindLesson {
				t.Fatalf("expected generator error, got %v", err)
			}
		})
	}
}

func TestGeneratorServiceUpstreamFailure(t *testing.T) {
	gen := NewGeneratorService(&fakeLLM{err: errors.New("timeout")}, 12000)
	_, err := gen.GenerateSummary(context.Background(), "text")
	var gErr *util.GeneratorError
	if !errors.As(err, &gErr) || !strings.Contains(gErr.Error(), "timeout") {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}

func TestGeneratorServiceEmptyText(t *testing.T) {
	llm := &fakeLLM{response: validLessonJSON}
	gen := NewGeneratorService(llm, 12000)

	_, err := gen.GenerateQuiz(context.Background(), "   ", 3)
	var vErr *util.ValidationError
	if !errors.As(err, &vErr) || vErr.Fields[0] != "text" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if llm.calls != 0 {
		t.Fatal("model should not be called for empty text")
	}
}

func TestGeneratorServiceClampsCountAndTruncatesInput(t *testing.T) {
	llm := &fakeLLM{response: `{"title": "", "cards": [{"front": "ATP", "back": "Energy currency"}]}`}
	gen := NewGeneratorService(llm, 10)

	cards, err := gen.GenerateFlashcards(context.Background(), "0123456789ABCDEF", 500)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(cards.Cards) != 1 {
		t.Fatalf("unexpected cards %+v", cards)
	}
	if !strings.Contains(llm.lastUser, "exactly 20 study flashcards") {
		t.Fatalf("count not clamped: %q", llm.lastUser)
	}
	if !strings.HasSuffix(llm.lastUser, "0123456789") {
		t.Fatalf("input not truncated: %q", llm.lastUser)
	}

	if _, err := gen.GenerateFlashcards(context.Background(), "text", 0); err != nil {
		t.Fatalf("generate default: %v", err)
	}
	if !strings.Contains(llm.lastUser, "exactly 5 study flashcards") {
		t.Fatalf("default count not applied: %q", llm.lastUser)
	}
}

func TestGeneratorServiceOtherKinds(t *testing.T) {
	ctx := context.Background()

	quiz, err := NewGeneratorService(&fakeLLM{response: `{"title": "Q", "questions": [
		{"type": "quiz", "quizType": "TF", "question": "Sky is blue", "correctAnswer": "true"}]}`}, 0).GenerateQuiz(ctx, "t", 1)
	if err != nil || len(quiz.Questions) != 1 {
		t.Fatalf("quiz: %+v %v", quiz, err)
	}

	polls, err := NewGeneratorService(&fakeLLM{response: `{"title": "P", "polls": [
		{"type": "poll", "pollType": "POLL_2", "question": "Ready?", "options": ["Yes", "No"]}]}`}, 0).GeneratePolls(ctx, "t", 1)
	if err != nil {
		t.Fatalf("polls: %v", err)
	}
	if _, ok := polls.Polls[0].(model.Poll2Item); !ok {
		t.Fatalf("expected Poll2Item, got %T", polls.Polls[0])
	}

	points, err := NewGeneratorService(&fakeLLM{response: `{"title": "K", "keyPoints": [
		{"point": "Light", "explanation": "Needed"}]}`}, 0).GenerateKeyPoints(ctx, "t", 1)
	if err != nil || points.KeyPoints[0].Point != "Light" {
		t.Fatalf("keypoints: %+v %v", points, err)
	}

	summary, err := NewGeneratorService(&fakeLLM{response: `{"title": "S", "summary": "Short.", "sections": []}`}, 0).GenerateSummary(ctx, "t")
	if err != nil || summary.Summary != "Short." {
		t.Fatalf("summary: %+v %v", summary, err)
	}
}
