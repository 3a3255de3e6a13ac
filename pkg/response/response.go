package response

import (
	"errors"
	"net/http"

	"news-cms/pkg/apperr"
	"news-cms/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int               `json:"code"`             // 0 表示成功，否则与HTTP状态码相同
	Message string            `json:"message"`          // 响应消息
	Kind    apperr.Kind       `json:"kind,omitempty"`   // 错误类别
	Data    interface{}       `json:"data,omitempty"`   // 响应数据
	Fields  map[string]string `json:"fields,omitempty"` // 字段级校验错误
	Error   string            `json:"error,omitempty"`  // 错误详情（仅在开发模式显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应，code 即HTTP状态码
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// StatusFor 错误类别对应的HTTP状态码
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindExpired:
		return http.StatusGone
	case apperr.KindAlreadyUsed, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail 把业务错误转换为结构化响应
// 存储不可用与内部错误记录日志，且不向客户端暴露细节
func Fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	resp := Response{Code: status, Kind: kind}

	var e *apperr.Error
	switch {
	case kind == apperr.KindUnavailable || kind == apperr.KindInternal:
		logger.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		resp.Message = http.StatusText(status)
		if gin.Mode() == gin.DebugMode {
			resp.Error = err.Error()
		}
	case errors.As(err, &e):
		resp.Message = e.Message
		resp.Fields = e.Fields
	default:
		resp.Message = err.Error()
	}

	_ = c.Error(err)
	c.JSON(status, resp)
}

// BindFailed 请求体绑定失败
func BindFailed(c *gin.Context, err error) {
	Fail(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
}
