package service

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"news-cms/internal/model"
	"news-cms/pkg/apperr"
)

var validate = validator.New()

// 评论与标题只保留纯文本，正文允许常见排版标签
var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

// plainText 去除全部标签后还原实体，得到实际存储的纯文本
// StrictPolicy 会把 & < > 等字符转义，直接存储会改变内容并撑长字段
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(strings.TrimSpace(s))))
}

// checkLength 按字符数校验已清洗的字段
func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return apperr.Validation(field+" is too long").WithField(field, fmt.Sprintf("max %d characters", max))
	}
	return nil
}

// clock 可替换的时间源，所有时间统一为 UTC
type clock struct {
	now func() time.Time
}

func defaultClock() clock {
	return clock{now: func() time.Time { return time.Now().UTC() }}
}

// SetClock 替换时间源（测试中使用）
func (c *clock) SetClock(now func() time.Time) {
	c.now = now
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail 校验邮箱格式，field 为错误中的字段名
func validateEmail(field, email string) error {
	if err := validate.Var(email, "required,email,max=191"); err != nil {
		var verrs validator.ValidationErrors
		detail := "invalid email"
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
			detail = "required"
		}
		return apperr.Validation("invalid email address").WithField(field, detail)
	}
	return nil
}

// Disconnector 会话失效后断开对应的实时连接，由 websocket.Hub 实现
type Disconnector interface {
	DisconnectSession(userID uint, sessionToken string) bool
	DisconnectUser(userID uint) bool
}

type noDisconnect struct{}

func (noDisconnect) DisconnectSession(uint, string) bool { return false }
func (noDisconnect) DisconnectUser(uint) bool            { return false }

func disconnectorOrNoop(d Disconnector) Disconnector {
	if d == nil {
		return noDisconnect{}
	}
	return d
}

func requireAdmin(actor model.Actor) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin privileges required")
	}
	return nil
}
