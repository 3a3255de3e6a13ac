package handler

import (
	"net/http"
	"time"

	"news-cms/config"
	"news-cms/internal/model"
	"news-cms/internal/service"
	"news-cms/pkg/jwt"
	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *service.AuthService
	cookie  cookieSettings
}

type cookieSettings struct {
	name   string
	secure bool
}

func NewAuthHandler(s *service.AuthService, sessionCfg config.SessionConfig, serverCfg config.ServerConfig) *AuthHandler {
	return &AuthHandler{service: s, cookie: cookieSettings{name: sessionCfg.CookieName, secure: serverCfg.CookieSecure}}
}

// LoginResponse 登录响应
type LoginResponse struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	user, err := h.service.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "注册成功", user)
}

// Login 用户登录，令牌同时写入会话 cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	res, err := h.service.Login(c.Request.Context(), req.Email, req.Password, deviceOf(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.setCookie(c, res.Token, res.ExpiresAt)
	response.SuccessWithMessage(c, "登录成功", LoginResponse{User: res.User, AccessToken: res.Token, ExpiresAt: res.ExpiresAt})
}

// SocialLogin 第三方登录（外部身份已由上游校验）
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req struct {
		Provider       string `json:"provider" binding:"required"`
		ProviderUserID string `json:"providerUserId" binding:"required"`
		Email          string `json:"email"`
		FullName       string `json:"fullName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	res, err := h.service.SocialLogin(c.Request.Context(), service.SocialIdentity{
		Provider:       req.Provider,
		ProviderUserID: req.ProviderUserID,
		Email:          req.Email,
		FullName:       req.FullName,
	}, deviceOf(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.setCookie(c, res.Token, res.ExpiresAt)
	response.SuccessWithMessage(c, "登录成功", LoginResponse{User: res.User, AccessToken: res.Token, ExpiresAt: res.ExpiresAt})
}

// Logout 注销当前会话
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), mustActor(c), jwt.GetSessionToken(c)); err != nil {
		response.Fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.name, "", -1, "/", "", h.cookie.secure, true)
	response.SuccessWithMessage(c, "已退出登录", nil)
}

// RequestCode 申请邮箱验证码或密码重置码
func (h *AuthHandler) RequestCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Type  string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	if err := h.service.RequestCode(c.Request.Context(), req.Email, req.Type); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, response.Response{Code: 0, Message: "验证码已发送"})
}

// VerifyEmail 兑换邮箱验证码
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	if err := h.service.VerifyEmail(c.Request.Context(), req.Email, req.Code); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "邮箱验证成功", nil)
}

// ResetPassword 使用重置码设置新密码
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "密码已重置，请重新登录", nil)
}

// LinkSocial 为当前用户绑定第三方身份
func (h *AuthHandler) LinkSocial(c *gin.Context) {
	var req struct {
		Provider       string `json:"provider" binding:"required"`
		ProviderUserID string `json:"providerUserId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	link, err := h.service.LinkSocial(c.Request.Context(), mustActor(c), req.Provider, req.ProviderUserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, link)
}

func (h *AuthHandler) setCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.name, token, maxAge, "/", "", h.cookie.secure, true)
}

func deviceOf(c *gin.Context) service.Device {
	return service.Device{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}
