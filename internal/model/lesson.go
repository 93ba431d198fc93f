package model

import "time"

// swagger:model Lesson
type Lesson struct {
	UUIDBase
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	PDFPath     string `gorm:"size:512" json:"pdfPath,omitempty"` // 上传的讲义在存储中的 key
	Items       Items  `json:"items"`
	IsActive    bool   `gorm:"default:false;index" json:"isActive"` // 全局最多一个课程处于激活状态
}

func (Lesson) TableName() string {
	return "lessons"
}

// LessonSummary 列表视图，不包含 items
type LessonSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	IsActive    bool      `json:"isActive"`
}

func (l *Lesson) Summary() LessonSummary {
	return LessonSummary{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		IsActive:    l.IsActive,
	}
}
