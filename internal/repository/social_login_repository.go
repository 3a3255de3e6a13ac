package repository

import (
	"context"

	"news-cms/internal/model"

	"gorm.io/gorm"
)

type SocialLoginRepository struct {
	orm *gorm.DB
}

func NewSocialLoginRepository(db *gorm.DB) *SocialLoginRepository {
	return &SocialLoginRepository{orm: db}
}

// Create 绑定外部身份；(provider, provider_user_id) 重复时返回 conflict
func (r *SocialLoginRepository) Create(ctx context.Context, link *model.SocialLogin) error {
	return translate(r.orm.WithContext(ctx).Create(link).Error, "social login")
}

func (r *SocialLoginRepository) Find(ctx context.Context, provider, providerUserID string) (*model.SocialLogin, error) {
	var link model.SocialLogin
	err := r.orm.WithContext(ctx).
		Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(&link).Error
	if err != nil {
		return nil, translate(err, "social login")
	}
	return &link, nil
}

func (r *SocialLoginRepository) ListByUser(ctx context.Context, userID uint) ([]model.SocialLogin, error) {
	var items []model.SocialLogin
	err := r.orm.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error
	return items, translate(err, "social login")
}
