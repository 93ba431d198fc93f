package model

import (
	"errors"
	"fmt"
	"strings"
)

// 以下为内容生成器（大模型）输出的结构

type GeneratedLesson struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Items       Items  `json:"items"`
}

func (g GeneratedLesson) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return errors.New("lesson title is required")
	}
	if len(g.Items) == 0 {
		return errors.New("lesson must contain at least one item")
	}
	return g.Items.Validate()
}

type QuizContent struct {
	Title     string `json:"title"`
	Questions Items  `json:"questions"`
}

func (q QuizContent) Validate() error {
	if len(q.Questions) == 0 {
		return errors.New("quiz must contain at least one question")
	}
	for idx, item := range q.Questions {
		if item == nil || item.Kind() != ItemQuiz {
			return fmt.Errorf("question %d is not a quiz item", idx)
		}
	}
	return q.Questions.Validate()
}

type PollContent struct {
	Title string `json:"title"`
	Polls Items  `json:"polls"`
}

func (p PollContent) Validate() error {
	if len(p.Polls) == 0 {
		return errors.New("poll set must contain at least one poll")
	}
	for idx, item := range p.Polls {
		if item == nil || item.Kind() != ItemPoll {
			return fmt.Errorf("poll %d is not a poll item", idx)
		}
	}
	return p.Polls.Validate()
}

type SummarySection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

type SummaryContent struct {
	Title    string           `json:"title"`
	Summary  string           `json:"summary"`
	Sections []SummarySection `json:"sections"`
}

func (s SummaryContent) Validate() error {
	if strings.TrimSpace(s.Summary) == "" {
		return errors.New("summary text is required")
	}
	return nil
}

type KeyPoint struct {
	Point       string `json:"point"`
	Explanation string `json:"explanation"`
}

type KeyPointsContent struct {
	Title     string     `json:"title"`
	KeyPoints []KeyPoint `json:"keyPoints"`
}

func (k KeyPointsContent) Validate() error {
	if len(k.KeyPoints) == 0 {
		return errors.New("at least one key point is required")
	}
	for idx, p := range k.KeyPoints {
		if strings.TrimSpace(p.Point) == "" {
			return fmt.Errorf("key point %d is empty", idx)
		}
	}
	return nil
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type FlashcardContent struct {
	Title string      `json:"title"`
	Cards []Flashcard `json:"cards"`
}

func (f FlashcardContent) Validate() error {
	if len(f.Cards) == 0 {
		return errors.New("at least one flashcard is required")
	}
	for idx, c := range f.Cards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			return fmt.Errorf("flashcard %d must have both sides", idx)
		}
	}
	return nil
}
