package repository

import (
	"context"
	"errors"
	"time"

	"news-cms/internal/model"
	"news-cms/pkg/apperr"

	"gorm.io/gorm"
)

type VerificationRepository struct {
	orm *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{orm: db}
}

func (r *VerificationRepository) Create(ctx context.Context, code *model.VerificationCode) error {
	return translate(r.orm.WithContext(ctx).Create(code).Error, "verification code")
}

// Redeem 兑换验证码
// 采用单条条件更新，并发兑换同一验证码时只有一方影响到行；
// 未命中时再区分不存在、已过期与已使用
func (r *VerificationRepository) Redeem(ctx context.Context, email, code, codeType string, now time.Time) error {
	res := r.orm.WithContext(ctx).Model(&model.VerificationCode{}).
		Where("email = ? AND code = ? AND type = ? AND is_used = ? AND expires_at > ?",
			email, code, codeType, false, now).
		Update("is_used", true)
	if res.Error != nil {
		return translate(res.Error, "verification code")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var latest model.VerificationCode
	err := r.orm.WithContext(ctx).
		Where("email = ? AND code = ? AND type = ?", email, code, codeType).
		Order("id DESC").
		First(&latest).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("verification code")
	case err != nil:
		return translate(err, "verification code")
	case !now.Before(latest.ExpiresAt):
		return apperr.Expired("verification code has expired")
	default:
		return apperr.AlreadyUsed("verification code has already been used")
	}
}
