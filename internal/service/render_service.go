package service

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/util"
)

//go:embed templates/*.html
var templateFS embed.FS

type renderOption struct {
	Value string
	Label string
}

var renderFuncs = template.FuncMap{
	"kind": func(item model.Item) string { return string(item.Kind()) },
	"inc":  func(i int) int { return i + 1 },
	"options": func(item model.Item) []renderOption {
		switch it := item.(type) {
		case model.MCQQuizItem:
			opts := make([]renderOption, 0, 4)
			for _, letter := range []string{"A", "B", "C", "D"} {
				text, _ := it.Options.Get(letter)
				opts = append(opts, renderOption{Value: letter, Label: letter + ". " + text})
			}
			return opts
		case model.TrueFalseItem:
			return []renderOption{{Value: "true", Label: "True"}, {Value: "false", Label: "False"}}
		case model.Poll2Item:
			return pollOptions(it.Options)
		case model.Poll4Item:
			return pollOptions(it.Options)
		}
		return nil
	},
}

func pollOptions(options []string) []renderOption {
	opts := make([]renderOption, 0, len(options))
	for _, o := range options {
		opts = append(opts, renderOption{Value: o, Label: o})
	}
	return opts
}

// RenderService 把结构化内容渲染为可独立打开的 HTML 页面
type RenderService struct {
	templates      *template.Template
	answerEndpoint string
}

func NewRenderService(apiBase string) *RenderService {
	tmpl := template.Must(template.New("pages").Funcs(renderFuncs).ParseFS(templateFS, "templates/*.html"))
	return &RenderService{
		templates:      tmpl,
		answerEndpoint: strings.TrimRight(apiBase, "/") + "/answers",
	}
}

type lessonPage struct {
	Title          string
	Description    string
	LessonID       string
	AnswerEndpoint string
	Items          model.Items
}

type quizPage struct {
	Title string
	Items model.Items
}

type flashcardPage struct {
	Title string
	Cards []model.Flashcard
}

func (s *RenderService) LessonPage(lesson *model.Lesson) ([]byte, error) {
	return s.render("lesson.html", lessonPage{
		Title:          lesson.Title,
		Description:    lesson.Description,
		LessonID:       lesson.ID,
		AnswerEndpoint: s.answerEndpoint,
		Items:          lesson.Items,
	})
}

func (s *RenderService) QuizPage(quiz *model.QuizContent) ([]byte, error) {
	if err := quiz.Validate(); err != nil {
		return nil, util.NewValidationError(err.Error(), "questions")
	}
	return s.render("quiz.html", quizPage{Title: titleOr(quiz.Title, "Quiz"), Items: quiz.Questions})
}

func (s *RenderService) FlashcardsPage(cards *model.FlashcardContent) ([]byte, error) {
	if err := cards.Validate(); err != nil {
		return nil, util.NewValidationError(err.Error(), "cards")
	}
	return s.render("flashcards.html", flashcardPage{Title: titleOr(cards.Title, "Flashcards"), Cards: cards.Cards})
}

func (s *RenderService) render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func titleOr(title, fallback string) string {
	if strings.TrimSpace(title) == "" {
		return fallback
	}
	return title
}
