package jwt

import (
	"context"
	"strings"

	"news-cms/internal/model"
	"news-cms/pkg/apperr"
	"news-cms/pkg/logger"
	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserIDKey 用户ID在gin.Context中的键名
	ContextUserIDKey = "user_id"
	// ContextActorKey 当前操作者
	ContextActorKey = "actor"
	// ContextSessionKey 当前会话令牌
	ContextSessionKey = "session_token"
)

// SessionResolver 根据令牌声明回查会话，返回当前操作者
// 会话失效、过期或用户被删除时返回 authentication 错误
type SessionResolver interface {
	ResolveSession(ctx context.Context, userID uint, sessionToken string) (model.Actor, error)
}

// Authenticator 认证中间件集合
type Authenticator struct {
	jwt        *JWTService
	resolver   SessionResolver
	cookieName string
}

// NewAuthenticator 创建认证中间件
func NewAuthenticator(jwtSvc *JWTService, resolver SessionResolver, cookieName string) *Authenticator {
	return &Authenticator{jwt: jwtSvc, resolver: resolver, cookieName: cookieName}
}

// RequireAuth 必须登录
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := a.extractToken(c)
		if tokenString == "" {
			response.Unauthorized(c, "未登录")
			c.Abort()
			return
		}
		if err := a.authenticate(c, tokenString); err != nil {
			logger.Warn("会话校验失败",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			response.Fail(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth 携带有效令牌时识别用户，否则按游客处理
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := a.extractToken(c); tokenString != "" {
			if err := a.authenticate(c, tokenString); err != nil {
				logger.Debug("可选认证失败，按游客处理", zap.Error(err))
			}
		}
		c.Next()
	}
}

// RequireAdmin 必须是管理员，需放在 RequireAuth 之后
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok || !actor.IsAdmin() {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context, tokenString string) error {
	claims, err := a.jwt.ValidateToken(tokenString)
	if err != nil {
		return apperr.Wrap(apperr.KindAuthentication, "token无效或已过期", err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return apperr.Wrap(apperr.KindAuthentication, "token无效", err)
	}
	actor, err := a.resolver.ResolveSession(c.Request.Context(), userID, claims.ID)
	if err != nil {
		return err
	}

	c.Set(ContextUserIDKey, actor.UserID)
	c.Set(ContextActorKey, actor)
	c.Set(ContextSessionKey, claims.ID)
	return nil
}

// extractToken 依次从 Authorization: Bearer 与会话 cookie 中读取令牌
func (a *Authenticator) extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if a.cookieName != "" {
		if cookie, err := c.Cookie(a.cookieName); err == nil {
			return cookie
		}
	}
	// 浏览器 WebSocket 无法设置请求头
	return c.Query("token")
}

// GetActor 从gin.Context中获取当前操作者
func GetActor(c *gin.Context) (model.Actor, bool) {
	if v, exists := c.Get(ContextActorKey); exists {
		if actor, ok := v.(model.Actor); ok {
			return actor, true
		}
	}
	return model.Actor{}, false
}

// GetSessionToken 从gin.Context中获取会话令牌
func GetSessionToken(c *gin.Context) string {
	return c.GetString(ContextSessionKey)
}
