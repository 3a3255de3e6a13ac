package model

import (
	"time"
)

// 用户角色
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 用户模型
// 邮箱唯一；密码仅存储哈希
// 用户只做软删除（IsDeleted），被删除的用户不能登录，也不出现在列表中
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	FullName        string     `gorm:"type:varchar(128);not null;comment:姓名" json:"fullName"`
	Email           string     `gorm:"type:varchar(191);not null;uniqueIndex;comment:邮箱" json:"email"`
	PasswordHash    string     `gorm:"type:varchar(255);comment:密码哈希" json:"-"`
	Role            string     `gorm:"type:varchar(32);not null;default:'user';comment:角色" json:"role"`
	CreatedAt       time.Time  `gorm:"comment:创建时间" json:"createdAt"`
	IsDeleted       bool       `gorm:"not null;default:false;index;comment:是否删除" json:"isDeleted"`
	IsEmailVerified bool       `gorm:"not null;default:false;comment:邮箱是否已验证" json:"isEmailVerified"`
	LastLoginAt     *time.Time `gorm:"comment:最近登录时间" json:"lastLoginAt,omitempty"`

	// 账号附属数据随用户级联删除
	Profile      *UserProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	SocialLogins []SocialLogin `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Sessions     []UserSession `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string { return "user" }

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
