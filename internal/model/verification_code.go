package model

import "time"

// 验证码类型
const (
	CodeTypeEmail = "email"
	CodeTypeReset = "reset"
)

// VerificationCode 一次性验证码
// 仅当 !IsUsed && now < ExpiresAt 时可兑换
type VerificationCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(191);not null;index:idx_code_lookup,priority:1;comment:邮箱" json:"email"`
	Code      string    `gorm:"type:varchar(32);not null;index:idx_code_lookup,priority:2;comment:验证码" json:"-"`
	ExpiresAt time.Time `gorm:"not null;comment:过期时间" json:"expiresAt"`
	IsUsed    bool      `gorm:"not null;default:false;comment:是否已使用" json:"isUsed"`
	Type      string    `gorm:"type:varchar(16);not null;comment:类型(email/reset)" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

func (VerificationCode) TableName() string { return "verification_code" }

// Redeemable 验证码在给定时间是否可兑换
func (v *VerificationCode) Redeemable(now time.Time) bool {
	return !v.IsUsed && now.Before(v.ExpiresAt)
}
