// Package apperr 定义业务错误分类
// 所有业务错误都在请求边界被统一转换为结构化响应，不会导致进程退出
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别，用于映射HTTP状态码
type Kind string

const (
	KindValidation     Kind = "validation"     // 输入非法，用户可修正
	KindNotFound       Kind = "not_found"      // 实体不存在或已软删除
	KindAuthorization  Kind = "authorization"  // 无权操作目标
	KindAuthentication Kind = "authentication" // 未登录或凭证错误
	KindExpired        Kind = "expired"        // 一次性令牌已过期
	KindAlreadyUsed    Kind = "already_used"   // 一次性令牌已使用
	KindConflict       Kind = "conflict"       // 唯一约束冲突或状态冲突
	KindUnavailable    Kind = "unavailable"    // 存储不可用
	KindInternal       Kind = "internal"
)

// Error 结构化业务错误
// Fields 仅用于 validation 类错误，key 为字段名
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 支持 errors.Is/As
func (e *Error) Unwrap() error { return e.Err }

// WithField 附加字段级错误详情
func (e *Error) WithField(field, detail string) *Error {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = detail
	return e
}

// New 创建指定类别的错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 包装底层错误
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation 参数校验错误
func Validation(message string) *Error { return New(KindValidation, message) }

// NotFound 实体不存在
func NotFound(entity string) *Error { return New(KindNotFound, entity+" not found") }

// Forbidden 无权限
func Forbidden(message string) *Error { return New(KindAuthorization, message) }

// Unauthenticated 未认证
func Unauthenticated(message string) *Error { return New(KindAuthentication, message) }

// Expired 令牌过期
func Expired(message string) *Error { return New(KindExpired, message) }

// AlreadyUsed 令牌已使用
func AlreadyUsed(message string) *Error { return New(KindAlreadyUsed, message) }

// Conflict 冲突
func Conflict(message string) *Error { return New(KindConflict, message) }

// Unavailable 存储访问失败
func Unavailable(err error) *Error { return Wrap(KindUnavailable, "storage unavailable", err) }

// KindOf 返回错误类别，非业务错误视为 internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is 判断错误是否属于指定类别
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
