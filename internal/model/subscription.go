package model

import "time"

// Subscription 邮件订阅，仅以邮箱为键，不关联用户
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(191);not null;uniqueIndex;comment:邮箱" json:"email"`
	SubscribedAt time.Time `gorm:"not null;comment:订阅时间" json:"subscribedAt"`
}

func (Subscription) TableName() string { return "subscription" }
