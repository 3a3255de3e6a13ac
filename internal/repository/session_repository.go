package repository

import (
	"context"
	"time"

	"news-cms/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	orm *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{orm: db}
}

// Issue 签发新会话
// 在同一事务中锁定用户行、失效该用户所有活跃会话并插入新会话，
// 因此同一用户任意时刻最多一个活跃会话
func (r *SessionRepository) Issue(ctx context.Context, s *model.UserSession) error {
	return translate(r.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewUserRepository(tx).LockForUpdate(ctx, s.UserID); err != nil {
			return err
		}
		if err := tx.Model(&model.UserSession{}).
			Where("user_id = ? AND is_active = ?", s.UserID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		s.IsActive = true
		return tx.Create(s).Error
	}), "session")
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.UserSession, error) {
	var s model.UserSession
	if err := r.orm.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, translate(err, "session")
	}
	return &s, nil
}

// ListByUser 用户的会话记录，最新的在前
func (r *SessionRepository) ListByUser(ctx context.Context, userID uint) ([]model.UserSession, error) {
	var items []model.UserSession
	err := r.orm.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&items).Error
	return items, translate(err, "session")
}

// Deactivate 失效指定用户的指定会话（仅本人）
func (r *SessionRepository) Deactivate(ctx context.Context, userID uint, token string) (bool, error) {
	res := r.orm.WithContext(ctx).Model(&model.UserSession{}).
		Where("user_id = ? AND token = ? AND is_active = ?", userID, token, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, translate(res.Error, "session")
	}
	return res.RowsAffected > 0, nil
}

// DeactivateAllForUser 失效用户全部会话
func (r *SessionRepository) DeactivateAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.orm.WithContext(ctx).Model(&model.UserSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return res.RowsAffected, translate(res.Error, "session")
}

// SweepExpired 失效所有已过期的活跃会话，返回处理条数；重复执行无副作用
func (r *SessionRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.orm.WithContext(ctx).Model(&model.UserSession{}).
		Where("is_active = ? AND expires_at <= ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, translate(res.Error, "session")
}

// Touch 刷新最近活动时间
func (r *SessionRepository) Touch(ctx context.Context, token string, at time.Time) error {
	err := r.orm.WithContext(ctx).Model(&model.UserSession{}).
		Where("token = ? AND is_active = ?", token, true).
		Update("last_activity", at).Error
	return translate(err, "session")
}
