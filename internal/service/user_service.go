package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"news-cms/internal/model"
	"news-cms/internal/repository"
	"news-cms/pkg/apperr"
	"news-cms/pkg/logger"
)

type UserService struct {
	repos *repository.Repositories
	conns Disconnector
}

func NewUserService(repos *repository.Repositories, conns Disconnector) *UserService {
	return &UserService{repos: repos, conns: disconnectorOrNoop(conns)}
}

// ProfileInput 资料编辑参数
type ProfileInput struct {
	AvatarURL   string
	Phone       string
	Address     string
	DateOfBirth *time.Time
	Bio         string
	Gender      string
	Settings    string
}

// Me 当前用户
func (s *UserService) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	return s.repos.Users.GetByID(ctx, actor.UserID)
}

// GetProfile 获取资料，尚未创建时返回空资料
func (s *UserService) GetProfile(ctx context.Context, actor model.Actor) (*model.UserProfile, error) {
	p, err := s.repos.Profiles.GetByUserID(ctx, actor.UserID)
	if apperr.Is(err, apperr.KindNotFound) {
		return &model.UserProfile{UserID: actor.UserID}, nil
	}
	return p, err
}

// UpdateProfile 覆盖写入资料，首次调用时创建
func (s *UserService) UpdateProfile(ctx context.Context, actor model.Actor, in ProfileInput) (*model.UserProfile, error) {
	if in.Gender != "" {
		if err := validate.Var(in.Gender, "oneof=male female other"); err != nil {
			return nil, apperr.Validation("invalid gender").WithField("gender", "must be male, female or other")
		}
	}
	if in.Settings != "" {
		if err := validate.Var(in.Settings, "json"); err != nil {
			return nil, apperr.Validation("settings must be valid JSON").WithField("settings", "invalid json")
		}
	}
	p := &model.UserProfile{
		UserID:      actor.UserID,
		AvatarURL:   strings.TrimSpace(in.AvatarURL),
		Phone:       strings.TrimSpace(in.Phone),
		Address:     plainText(in.Address),
		DateOfBirth: in.DateOfBirth,
		Bio:         plainText(in.Bio),
		Gender:      in.Gender,
		Settings:    in.Settings,
	}
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"avatarUrl", p.AvatarURL, 512},
		{"phone", p.Phone, 32},
		{"address", p.Address, 255},
	} {
		if err := checkLength(f.name, f.value, f.max); err != nil {
			return nil, err
		}
	}
	if err := s.repos.Profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return s.repos.Profiles.GetByUserID(ctx, actor.UserID)
}

// List 管理员查看用户列表
func (s *UserService) List(ctx context.Context, actor model.Actor, page repository.Page) ([]model.User, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.repos.Users.List(ctx, page)
}

// Delete 软删除用户并使其全部会话失效
func (s *UserService) Delete(ctx context.Context, actor model.Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return apperr.Conflict("admins cannot delete their own account")
	}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Users.SoftDelete(ctx, id); err != nil {
			return err
		}
		_, err := tx.Sessions.DeactivateAllForUser(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	s.conns.DisconnectUser(id)
	logger.Info("用户已删除", zap.Uint("user_id", id), zap.Uint("actor_id", actor.UserID))
	return nil
}

// ChangeRole 修改用户角色
func (s *UserService) ChangeRole(ctx context.Context, actor model.Actor, id uint, role string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return apperr.Validation("unknown role").WithField("role", "must be admin or user")
	}
	if id == actor.UserID && role != model.RoleAdmin {
		return apperr.Conflict("admins cannot demote themselves")
	}
	return s.repos.Users.UpdateRole(ctx, id, role)
}
