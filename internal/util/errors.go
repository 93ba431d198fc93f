package util

import (
	"fmt"
	"strings"
)

// ValidationError 请求字段缺失或格式不正确（400）
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		return "missing required fields: " + strings.Join(e.Fields, ", ")
	}
	return "invalid request"
}

func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Message: message}
}

// NotFoundError 引用的资源不存在（404）
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// DuplicateSubmissionError 同一学生对同一项已经作答（409）
type DuplicateSubmissionError struct {
	LessonID  string
	ItemIndex int
	StudentID string
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("student %s already answered item %d of lesson %s", e.StudentID, e.ItemIndex, e.LessonID)
}

// StorageError 底层存储不可用或违反约束（500）
type StorageError struct {
	Op         string
	Err        error
	Constraint bool
}

func (e *StorageError) Error() string {
	if e.Constraint {
		return fmt.Sprintf("storage constraint violated during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WrapStorage 将存储层错误包装为 StorageError，nil 原样返回
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// GeneratorError 大模型调用失败或返回内容不合法（500，保留原始信息）
type GeneratorError struct {
	Kind string
	Err  error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Kind, e.Err)
}

func (e *GeneratorError) Unwrap() error { return e.Err }
