package repository

import (
	"context"

	"news-cms/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	orm *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{orm: db}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uint) (*model.UserProfile, error) {
	var p model.UserProfile
	if err := r.orm.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err, "profile")
	}
	return &p, nil
}

// Upsert 以 user_id 为键创建或覆盖资料
func (r *ProfileRepository) Upsert(ctx context.Context, p *model.UserProfile) error {
	err := r.orm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"avatar_url", "phone", "address", "date_of_birth", "bio", "gender", "settings",
		}),
	}).Create(p).Error
	return translate(err, "profile")
}
