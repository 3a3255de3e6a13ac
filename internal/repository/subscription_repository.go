package repository

import (
	"context"

	"news-cms/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	orm *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{orm: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *model.Subscription) error {
	return translate(r.orm.WithContext(ctx).Create(s).Error, "subscription")
}

func (r *SubscriptionRepository) DeleteByEmail(ctx context.Context, email string) error {
	res := r.orm.WithContext(ctx).Where("email = ?", email).Delete(&model.Subscription{})
	if res.Error != nil {
		return translate(res.Error, "subscription")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "subscription")
	}
	return nil
}

func (r *SubscriptionRepository) List(ctx context.Context, page Page) ([]model.Subscription, int64, error) {
	var (
		items []model.Subscription
		total int64
	)
	q := r.orm.WithContext(ctx).Model(&model.Subscription{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "subscription")
	}
	p := page.Normalize()
	err := q.Order("subscribed_at ASC, id ASC").Limit(p.PageSize).Offset(p.Offset()).Find(&items).Error
	return items, total, translate(err, "subscription")
}
