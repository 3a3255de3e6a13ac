package model

import "time"

// UserSession 登录会话
// 同一用户同一时间最多一个活跃会话，由 repository 的签发事务保证
type UserSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index:idx_session_user_active,priority:1;comment:用户ID" json:"userId"`
	Token        string    `gorm:"type:varchar(64);not null;uniqueIndex;comment:会话令牌" json:"-"`
	DeviceInfo   string    `gorm:"type:varchar(255);comment:设备信息" json:"deviceInfo"`
	IP           string    `gorm:"type:varchar(64);comment:登录IP" json:"ip"`
	IsActive     bool      `gorm:"not null;default:true;index:idx_session_user_active,priority:2;comment:是否有效" json:"isActive"`
	LastActivity time.Time `gorm:"comment:最近活动时间" json:"lastActivity"`
	ExpiresAt    time.Time `gorm:"not null;index;comment:过期时间" json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (UserSession) TableName() string { return "user_session" }

// Valid 会话在给定时间是否可用
func (s *UserSession) Valid(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
