package repository

import (
	"context"
	"time"

	"news-cms/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{orm: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.orm.WithContext(ctx).Create(user).Error, "user")
}

// GetByID 获取未删除的用户
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := r.orm.WithContext(ctx).Where("is_deleted = ?", false).First(&u, id).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

// GetByEmail 按邮箱获取未删除的用户
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.orm.WithContext(ctx).Where("email = ? AND is_deleted = ?", email, false).First(&u).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

// List 分页列出未删除用户
func (r *UserRepository) List(ctx context.Context, page Page) ([]model.User, int64, error) {
	var (
		users []model.User
		total int64
	)
	q := r.orm.WithContext(ctx).Model(&model.User{}).Where("is_deleted = ?", false)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "user")
	}
	p := page.Normalize()
	err := q.Order("id ASC").Limit(p.PageSize).Offset(p.Offset()).Find(&users).Error
	return users, total, translate(err, "user")
}

// SoftDelete 软删除用户，已删除时返回 not found
func (r *UserRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.updateLive(ctx, id, map[string]interface{}{"is_deleted": true})
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uint, role string) error {
	return r.updateLive(ctx, id, map[string]interface{}{"role": role})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateLive(ctx, id, map[string]interface{}{"password_hash": hash})
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, email string) error {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return r.updateLive(ctx, u.ID, map[string]interface{}{"is_email_verified": true})
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.updateLive(ctx, id, map[string]interface{}{"last_login_at": at})
}

// LockForUpdate 锁定用户行，串行化同一用户的会话签发（仅在事务中有效）
func (r *UserRepository) LockForUpdate(ctx context.Context, id uint) error {
	q := r.orm.WithContext(ctx)
	if supportsRowLocking(q) {
		q = q.Clauses(lockingUpdate())
	}
	var u model.User
	return translate(q.Select("id").Where("is_deleted = ?", false).First(&u, id).Error, "user")
}

func (r *UserRepository) updateLive(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(fields)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL 对未变化的行返回 0，需再确认用户是否存在
	_, err := r.GetByID(ctx, id)
	return err
}
