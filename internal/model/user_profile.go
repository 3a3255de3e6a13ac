package model

import "time"

// UserProfile 用户资料，一对一扩展，首次编辑时创建
type UserProfile struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	UserID      uint       `gorm:"not null;uniqueIndex;comment:用户ID" json:"userId"`
	AvatarURL   string     `gorm:"type:varchar(512)" json:"avatarUrl"`
	Phone       string     `gorm:"type:varchar(32)" json:"phone"`
	Address     string     `gorm:"type:varchar(255)" json:"address"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Bio         string     `gorm:"type:text" json:"bio"`
	Gender      string     `gorm:"type:varchar(16)" json:"gender"`
	Settings    string     `gorm:"type:text;comment:JSON配置" json:"settings"`
}

func (UserProfile) TableName() string { return "user_profile" }
