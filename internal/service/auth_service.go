package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"go.uber.org/zap"

	"news-cms/config"
	"news-cms/internal/model"
	"news-cms/internal/repository"
	"news-cms/pkg/apperr"
	"news-cms/pkg/jwt"
	"news-cms/pkg/logger"
	"news-cms/pkg/password"
)

// Notifier 验证码投递
type Notifier interface {
	SendCode(ctx context.Context, email, codeType, code string) error
}

// LogNotifier 仅把验证码写入日志，未接入邮件服务时使用
type LogNotifier struct{}

func (LogNotifier) SendCode(_ context.Context, email, codeType, code string) error {
	logger.Info("验证码已生成", zap.String("email", email), zap.String("type", codeType), zap.String("code", code))
	return nil
}

// Device 登录设备信息
type Device struct {
	UserAgent string
	IP        string
}

// SocialIdentity 第三方身份
type SocialIdentity struct {
	Provider       string
	ProviderUserID string
	Email          string
	FullName       string
}

// LoginResult 登录结果
type LoginResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	clock
	repos      *repository.Repositories
	jwtService *jwt.JWTService
	notifier   Notifier
	conns      Disconnector
	sessionTTL time.Duration
	codeTTL    time.Duration
	codeLength int
}

func NewAuthService(repos *repository.Repositories, jwtService *jwt.JWTService, notifier Notifier, conns Disconnector,
	sessionCfg config.SessionConfig, codeCfg config.VerificationConfig) *AuthService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &AuthService{
		clock:      defaultClock(),
		repos:      repos,
		jwtService: jwtService,
		notifier:   notifier,
		conns:      disconnectorOrNoop(conns),
		sessionTTL: sessionCfg.TTL,
		codeTTL:    codeCfg.CodeTTL,
		codeLength: codeCfg.CodeLength,
	}
}

// Register 注册
func (s *AuthService) Register(ctx context.Context, fullName, email, plainPassword string) (*model.User, error) {
	fullName = plainText(fullName)
	email = normalizeEmail(email)
	if fullName == "" {
		return nil, apperr.Validation("full name is required").WithField("fullName", "required")
	}
	if err := checkLength("fullName", fullName, 128); err != nil {
		return nil, err
	}
	if err := validateEmail("email", email); err != nil {
		return nil, err
	}
	hash, err := hashPassword(plainPassword)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.now(),
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 邮箱密码登录，签发新会话并使旧会话失效
func (s *AuthService) Login(ctx context.Context, email, plainPassword string, device Device) (*LoginResult, error) {
	user, err := s.repos.Users.GetByEmail(ctx, normalizeEmail(email))
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !password.Verify(plainPassword, user.PasswordHash) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	return s.issueSession(ctx, user, device)
}

// Logout 只失效调用者自己的会话
func (s *AuthService) Logout(ctx context.Context, actor model.Actor, sessionToken string) error {
	if sessionToken == "" {
		return apperr.Unauthenticated("no active session")
	}
	ok, err := s.repos.Sessions.Deactivate(ctx, actor.UserID, sessionToken)
	if err != nil {
		return err
	}
	if ok {
		s.conns.DisconnectSession(actor.UserID, sessionToken)
	}
	return nil
}

// ResolveSession 校验 JWT 对应的会话仍然有效，供认证中间件使用
func (s *AuthService) ResolveSession(ctx context.Context, userID uint, sessionToken string) (model.Actor, error) {
	sess, err := s.repos.Sessions.GetByToken(ctx, sessionToken)
	if apperr.Is(err, apperr.KindNotFound) {
		return model.Actor{}, apperr.Unauthenticated("session not found")
	}
	if err != nil {
		return model.Actor{}, err
	}
	now := s.now()
	if sess.UserID != userID || !sess.Valid(now) {
		return model.Actor{}, apperr.Unauthenticated("session is no longer active")
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return model.Actor{}, apperr.Unauthenticated("account is not available")
	}
	if err != nil {
		return model.Actor{}, err
	}

	if err := s.repos.Sessions.Touch(ctx, sessionToken, now); err != nil {
		logger.Warn("刷新会话活动时间失败", zap.Uint("user_id", userID), zap.Error(err))
	}
	return model.Actor{UserID: user.ID, Role: user.Role, Email: user.Email}, nil
}

// SweepExpiredSessions 失效所有过期会话
func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	return s.repos.Sessions.SweepExpired(ctx, s.now())
}

// RequestCode 生成验证码并投递
// 邮箱未注册时静默成功，避免暴露账号是否存在
func (s *AuthService) RequestCode(ctx context.Context, email, codeType string) error {
	email = normalizeEmail(email)
	if err := validateEmail("email", email); err != nil {
		return err
	}
	if err := checkCodeType(codeType); err != nil {
		return err
	}
	if _, err := s.repos.Users.GetByEmail(ctx, email); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	code, err := password.GenerateCode(s.codeLength)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "generate code", err)
	}
	now := s.now()
	if err := s.repos.Codes.Create(ctx, &model.VerificationCode{
		Email:     email,
		Code:      code,
		Type:      codeType,
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}
	if err := s.notifier.SendCode(ctx, email, codeType, code); err != nil {
		return apperr.Unavailable(fmt.Errorf("deliver code: %w", err))
	}
	return nil
}

// Redeem 兑换一次性验证码
func (s *AuthService) Redeem(ctx context.Context, email, code, codeType string) error {
	if err := checkCodeType(codeType); err != nil {
		return err
	}
	return s.repos.Codes.Redeem(ctx, normalizeEmail(email), strings.TrimSpace(code), codeType, s.now())
}

// VerifyEmail 兑换邮箱验证码并标记邮箱已验证
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	now := s.now()
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Codes.Redeem(ctx, email, strings.TrimSpace(code), model.CodeTypeEmail, now); err != nil {
			return err
		}
		return tx.Users.MarkEmailVerified(ctx, email)
	})
}

// ResetPassword 兑换重置验证码、更新密码并使该用户全部会话失效
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	email = normalizeEmail(email)
	now := s.now()
	var userID uint
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Codes.Redeem(ctx, email, strings.TrimSpace(code), model.CodeTypeReset, now); err != nil {
			return err
		}
		user, err := tx.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if err := tx.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return err
		}
		userID = user.ID
		_, err = tx.Sessions.DeactivateAllForUser(ctx, user.ID)
		return err
	})
	if err != nil {
		return err
	}
	s.conns.DisconnectUser(userID)
	return nil
}

// SocialLogin 第三方登录
// 依次匹配已绑定的账号、同邮箱账号，都没有时创建已验证邮箱的新账号
func (s *AuthService) SocialLogin(ctx context.Context, identity SocialIdentity, device Device) (*LoginResult, error) {
	if err := checkIdentity(identity); err != nil {
		return nil, err
	}

	link, err := s.repos.SocialLogins.Find(ctx, identity.Provider, identity.ProviderUserID)
	switch {
	case err == nil:
		user, err := s.repos.Users.GetByID(ctx, link.UserID)
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthenticated("account is not available")
		}
		if err != nil {
			return nil, err
		}
		return s.issueSession(ctx, user, device)
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, err
	}

	email := normalizeEmail(identity.Email)
	if err := validateEmail("email", email); err != nil {
		return nil, err
	}
	var user *model.User
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.Users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			user = existing
		case apperr.Is(err, apperr.KindNotFound):
			name := plainText(identity.FullName)
			if name == "" {
				name = email
			}
			if err := checkLength("fullName", name, 128); err != nil {
				return err
			}
			user = &model.User{
				FullName:        name,
				Email:           email,
				Role:            model.RoleUser,
				IsEmailVerified: true,
				CreatedAt:       s.now(),
			}
			if err := tx.Users.Create(ctx, user); err != nil {
				return err
			}
		default:
			return err
		}
		return tx.SocialLogins.Create(ctx, &model.SocialLogin{
			UserID:         user.ID,
			Provider:       identity.Provider,
			ProviderUserID: identity.ProviderUserID,
			CreatedAt:      s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, device)
}

// LinkSocial 为已登录用户绑定第三方身份
func (s *AuthService) LinkSocial(ctx context.Context, actor model.Actor, provider, providerUserID string) (*model.SocialLogin, error) {
	if err := checkIdentity(SocialIdentity{Provider: provider, ProviderUserID: providerUserID}); err != nil {
		return nil, err
	}
	existing, err := s.repos.SocialLogins.Find(ctx, provider, providerUserID)
	switch {
	case err == nil && existing.UserID == actor.UserID:
		return existing, nil
	case err == nil:
		return nil, apperr.Conflict("this identity is linked to another account")
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, err
	}

	link := &model.SocialLogin{
		UserID:         actor.UserID,
		Provider:       provider,
		ProviderUserID: providerUserID,
		CreatedAt:      s.now(),
	}
	if err := s.repos.SocialLogins.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// issueSession 签发会话并生成 JWT
func (s *AuthService) issueSession(ctx context.Context, user *model.User, device Device) (*LoginResult, error) {
	now := s.now()
	sess := &model.UserSession{
		UserID:       user.ID,
		Token:        uuid.NewString(),
		DeviceInfo:   describeDevice(device.UserAgent),
		IP:           device.IP,
		IsActive:     true,
		LastActivity: now,
		ExpiresAt:    now.Add(s.sessionTTL),
		CreatedAt:    now,
	}
	if err := s.repos.Sessions.Issue(ctx, sess); err != nil {
		return nil, err
	}
	// 旧会话已失效，其连接一并断开
	s.conns.DisconnectUser(user.ID)

	if err := s.repos.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn("更新最近登录时间失败", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role, sess.Token, now, sess.ExpiresAt)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "sign token", err)
	}
	logger.Info("用户登录", zap.Uint("user_id", user.ID), zap.String("device", sess.DeviceInfo), zap.String("ip", device.IP))
	return &LoginResult{User: user, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// describeDevice 把 User-Agent 归纳为 "Chrome 120.0 / Windows 10 (desktop)" 形式
func describeDevice(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "unknown"
	}
	ua := useragent.Parse(raw)
	kind := "desktop"
	switch {
	case ua.Bot:
		kind = "bot"
	case ua.Tablet:
		kind = "tablet"
	case ua.Mobile:
		kind = "mobile"
	case !ua.Desktop:
		kind = "other"
	}
	browser := strings.TrimSpace(ua.Name + " " + ua.Version)
	if browser == "" {
		browser = "unknown"
	}
	os := strings.TrimSpace(ua.OS + " " + ua.OSVersion)
	if os == "" {
		os = "unknown"
	}
	desc := fmt.Sprintf("%s / %s (%s)", browser, os, kind)
	if len(desc) > 255 {
		desc = desc[:255]
	}
	return desc
}

func hashPassword(plain string) (string, error) {
	hash, err := password.Hash(plain)
	if errors.Is(err, password.ErrTooShort) {
		return "", apperr.Validation("password is too short").
			WithField("password", fmt.Sprintf("min %d characters", password.MinLength))
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "hash password", err)
	}
	return hash, nil
}

func checkCodeType(codeType string) error {
	if codeType != model.CodeTypeEmail && codeType != model.CodeTypeReset {
		return apperr.Validation("unknown code type").WithField("type", "must be email or reset")
	}
	return nil
}

func checkIdentity(id SocialIdentity) error {
	if strings.TrimSpace(id.Provider) == "" {
		return apperr.Validation("provider is required").WithField("provider", "required")
	}
	if strings.TrimSpace(id.ProviderUserID) == "" {
		return apperr.Validation("provider user id is required").WithField("providerUserId", "required")
	}
	return nil
}
