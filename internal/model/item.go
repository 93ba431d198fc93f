package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type ItemKind string

const (
	ItemText ItemKind = "text"
	ItemQuiz ItemKind = "quiz"
	ItemPoll ItemKind = "poll"
)

const (
	QuizMCQ = "MCQ"
	QuizTF  = "TF"

	PollTwo  = "POLL_2"
	PollFour = "POLL_4"
)

// Item 课程中的一个内容项，共五种：文本、单选题、判断题、二选一投票、四选一投票
type Item interface {
	Kind() ItemKind
	Validate() error
}

type TextItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (TextItem) Kind() ItemKind { return ItemText }

func (i TextItem) Validate() error {
	if strings.TrimSpace(i.Content) == "" {
		return errors.New("text item: content is required")
	}
	return nil
}

func (i TextItem) MarshalJSON() ([]byte, error) {
	type alias TextItem
	return json.Marshal(struct {
		Type ItemKind `json:"type"`
		alias
	}{ItemText, alias(i)})
}

type MCQOptions struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

func (o MCQOptions) Get(letter string) (string, bool) {
	switch strings.ToUpper(letter) {
	case "A":
		return o.A, true
	case "B":
		return o.B, true
	case "C":
		return o.C, true
	case "D":
		return o.D, true
	}
	return "", false
}

type MCQQuizItem struct {
	Question      string     `json:"question"`
	Options       MCQOptions `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"` // A-D
	Explanation   string     `json:"explanation,omitempty"`
}

func (MCQQuizItem) Kind() ItemKind { return ItemQuiz }

func (i MCQQuizItem) Validate() error {
	if strings.TrimSpace(i.Question) == "" {
		return errors.New("quiz item: question is required")
	}
	for _, letter := range []string{"A", "B", "C", "D"} {
		if opt, _ := i.Options.Get(letter); strings.TrimSpace(opt) == "" {
			return fmt.Errorf("quiz item: option %s is required", letter)
		}
	}
	if _, ok := i.Options.Get(i.CorrectAnswer); !ok {
		return fmt.Errorf("quiz item: correctAnswer must be one of A-D, got %q", i.CorrectAnswer)
	}
	return nil
}

func (i MCQQuizItem) MarshalJSON() ([]byte, error) {
	type alias MCQQuizItem
	return json.Marshal(struct {
		Type     ItemKind `json:"type"`
		QuizType string   `json:"quizType"`
		alias
	}{ItemQuiz, QuizMCQ, alias(i)})
}

type TrueFalseItem struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"` // "true" | "false"
	Explanation   string `json:"explanation,omitempty"`
}

func (TrueFalseItem) Kind() ItemKind { return ItemQuiz }

func (i TrueFalseItem) Validate() error {
	if strings.TrimSpace(i.Question) == "" {
		return errors.New("quiz item: question is required")
	}
	if i.CorrectAnswer != "true" && i.CorrectAnswer != "false" {
		return fmt.Errorf("quiz item: correctAnswer must be \"true\" or \"false\", got %q", i.CorrectAnswer)
	}
	return nil
}

func (i TrueFalseItem) MarshalJSON() ([]byte, error) {
	type alias TrueFalseItem
	return json.Marshal(struct {
		Type     ItemKind `json:"type"`
		QuizType string   `json:"quizType"`
		alias
	}{ItemQuiz, QuizTF, alias(i)})
}

type Poll2Item struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func (Poll2Item) Kind() ItemKind { return ItemPoll }

func (i Poll2Item) Validate() error {
	return validatePoll(i.Question, i.Options, 2)
}

func (i Poll2Item) MarshalJSON() ([]byte, error) {
	type alias Poll2Item
	return json.Marshal(struct {
		Type     ItemKind `json:"type"`
		PollType string   `json:"pollType"`
		alias
	}{ItemPoll, PollTwo, alias(i)})
}

type Poll4Item struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func (Poll4Item) Kind() ItemKind { return ItemPoll }

func (i Poll4Item) Validate() error {
	return validatePoll(i.Question, i.Options, 4)
}

func (i Poll4Item) MarshalJSON() ([]byte, error) {
	type alias Poll4Item
	return json.Marshal(struct {
		Type     ItemKind `json:"type"`
		PollType string   `json:"pollType"`
		alias
	}{ItemPoll, PollFour, alias(i)})
}

func validatePoll(question string, options []string, want int) error {
	if strings.TrimSpace(question) == "" {
		return errors.New("poll item: question is required")
	}
	if len(options) != want {
		return fmt.Errorf("poll item: expected %d options, got %d", want, len(options))
	}
	for idx, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("poll item: option %d is empty", idx+1)
		}
	}
	return nil
}

// CorrectAnswer 测验题返回标准答案，其他类型返回 false
func CorrectAnswer(item Item) (string, bool) {
	switch it := item.(type) {
	case MCQQuizItem:
		return it.CorrectAnswer, true
	case TrueFalseItem:
		return it.CorrectAnswer, true
	}
	return "", false
}

type itemEnvelope struct {
	Type     ItemKind        `json:"type"`
	QuizType string          `json:"quizType"`
	PollType string          `json:"pollType"`
	Options  json.RawMessage `json:"options"`
}

// DecodeItem 按 type/quizType/pollType 标签解析单个内容项。
// 模型输出有时缺少子类型，此时根据 options 推断。
func DecodeItem(raw []byte) (Item, error) {
	var env itemEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case ItemText:
		var it TextItem
		err := json.Unmarshal(raw, &it)
		return it, err

	case ItemQuiz:
		quizType := strings.ToUpper(env.QuizType)
		if quizType == "" {
			quizType = QuizTF
			if len(env.Options) > 0 && string(env.Options) != "null" {
				quizType = QuizMCQ
			}
		}
		switch quizType {
		case QuizMCQ:
			var it MCQQuizItem
			err := json.Unmarshal(raw, &it)
			it.CorrectAnswer = strings.ToUpper(strings.TrimSpace(it.CorrectAnswer))
			return it, err
		case QuizTF:
			var it TrueFalseItem
			err := json.Unmarshal(raw, &it)
			it.CorrectAnswer = strings.ToLower(strings.TrimSpace(it.CorrectAnswer))
			return it, err
		}
		return nil, fmt.Errorf("unknown quizType %q", env.QuizType)

	case ItemPoll:
		var opts struct {
			Question string   `json:"question"`
			Options  []string `json:"options"`
		}
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, err
		}
		pollType := strings.ToUpper(env.PollType)
		if pollType == "" {
			pollType = PollFour
			if len(opts.Options) == 2 {
				pollType = PollTwo
			}
		}
		switch pollType {
		case PollTwo:
			return Poll2Item{Question: opts.Question, Options: opts.Options}, nil
		case PollFour:
			return Poll4Item{Question: opts.Question, Options: opts.Options}, nil
		}
		return nil, fmt.Errorf("unknown pollType %q", env.PollType)
	}

	return nil, fmt.Errorf("unknown item type %q", env.Type)
}

// Items 有序内容项列表，数据库中以单个 JSON 文本列存储，读取时解析为具体类型
type Items []Item

func (items Items) MarshalJSON() ([]byte, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Item(items))
}

func (items *Items) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Items, 0, len(raws))
	for idx, raw := range raws {
		item, err := DecodeItem(raw)
		if err != nil {
			return fmt.Errorf("item %d: %w", idx, err)
		}
		out = append(out, item)
	}
	*items = out
	return nil
}

// Validate 校验每一项的结构
func (items Items) Validate() error {
	for idx, item := range items {
		if item == nil {
			return fmt.Errorf("item %d: empty", idx)
		}
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", idx, err)
		}
	}
	return nil
}

func (items Items) Value() (driver.Value, error) {
	b, err := items.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (items *Items) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*items = Items{}
		return nil
	case []byte:
		return items.UnmarshalJSON(v)
	case string:
		return items.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("unsupported items column type %T", src)
}

func (Items) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "mysql" {
		return "LONGTEXT"
	}
	return "TEXT"
}
