package model

import "time"

// SocialLogin 第三方登录绑定
// (Provider, ProviderUserID) 唯一：同一外部身份最多绑定一个本地账号
type SocialLogin struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index;comment:用户ID" json:"userId"`
	Provider       string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_social_identity,priority:1" json:"provider"`
	ProviderUserID string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_social_identity,priority:2" json:"providerUserId"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (SocialLogin) TableName() string { return "social_login" }
