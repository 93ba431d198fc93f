package util

import (
	"errors"
	"net/http"

	"lecturelab_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse 仅包含提示信息的响应
type MessageResponse struct {
	Message string `json:"message"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

func Error(c *gin.Context, code int, message string, details ...interface{}) {
	resp := ErrorResponse{Error: message}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	c.AbortWithStatusJSON(code, resp)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err), zap.String("path", c.FullPath()))
	InternalServerError(c)
}

// RespondError 按错误类型映射到固定的状态码
func RespondError(c *gin.Context, err error) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		duplicateErr  *DuplicateSubmissionError
		storageErr    *StorageError
		generatorErr  *GeneratorError
	)

	switch {
	case errors.As(err, &validationErr):
		if len(validationErr.Fields) > 0 {
			Error(c, http.StatusBadRequest, validationErr.Error(), validationErr.Fields)
			return
		}
		Error(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		Error(c, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &duplicateErr):
		Error(c, http.StatusConflict, "Answer already submitted for this item")
	case errors.As(err, &generatorErr):
		logger.Log.Error("Content generation failed", zap.String("kind", generatorErr.Kind), zap.Error(generatorErr.Err))
		Error(c, http.StatusInternalServerError, "Content generation failed", generatorErr.Err.Error())
	case errors.As(err, &storageErr):
		logger.Log.Error("Storage failure", zap.String("op", storageErr.Op), zap.Error(storageErr.Err))
		Error(c, http.StatusInternalServerError, "Storage failure")
	default:
		LogInternalError(c, err)
	}
}
