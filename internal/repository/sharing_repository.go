package repository

import (
	"context"

	"news-cms/internal/model"

	"gorm.io/gorm"
)

type SharingRepository struct {
	orm *gorm.DB
}

func NewSharingRepository(db *gorm.DB) *SharingRepository {
	return &SharingRepository{orm: db}
}

func (r *SharingRepository) Create(ctx context.Context, s *model.NewsSharing) error {
	return translate(r.orm.WithContext(ctx).Create(s).Error, "share")
}

func (r *SharingRepository) GetByID(ctx context.Context, id uint) (*model.NewsSharing, error) {
	var s model.NewsSharing
	if err := r.orm.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err, "share")
	}
	return &s, nil
}

// ListByRecipient 收件箱，最新的在前，附带文章
func (r *SharingRepository) ListByRecipient(ctx context.Context, email string, page Page) ([]model.NewsSharing, int64, error) {
	var (
		items []model.NewsSharing
		total int64
	)
	q := r.orm.WithContext(ctx).Model(&model.NewsSharing{}).Where("recipient_email = ?", email)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "share")
	}
	p := page.Normalize()
	err := q.Preload("News").
		Order("shared_at DESC, id DESC").
		Limit(p.PageSize).Offset(p.Offset()).
		Find(&items).Error
	return items, total, translate(err, "share")
}

func (r *SharingRepository) SetRead(ctx context.Context, id uint, read bool) error {
	err := r.orm.WithContext(ctx).Model(&model.NewsSharing{}).
		Where("id = ?", id).
		Update("is_read", read).Error
	return translate(err, "share")
}
