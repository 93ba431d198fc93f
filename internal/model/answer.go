package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Answer 学生对课程某一项的一次作答，(lesson_id, item_index, student_id) 唯一
// swagger:model Answer
type Answer struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LessonID    string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_answer_unique,priority:1" json:"lessonId"`
	ItemIndex   int       `gorm:"not null;uniqueIndex:idx_answer_unique,priority:2" json:"itemIndex"`
	ItemID      string    `gorm:"size:100" json:"itemId"`
	StudentID   string    `gorm:"size:191;not null;uniqueIndex:idx_answer_unique,priority:3" json:"studentId"`
	Value       string    `gorm:"column:answer;type:text;not null" json:"answer"`
	ItemType    ItemKind  `gorm:"size:20" json:"itemType"`
	SubmittedAt time.Time `gorm:"<-:create;autoCreateTime;index" json:"submittedAt"`
}

func (Answer) TableName() string {
	return "answers"
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ItemID == "" {
		a.ItemID = DefaultItemID(a.ItemIndex)
	}
	return nil
}

func DefaultItemID(itemIndex int) string {
	return fmt.Sprintf("item_%d", itemIndex)
}
