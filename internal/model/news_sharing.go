package model

import "time"

// NewsSharing 文章分享记录："X 把文章 Y 分享给了你的邮箱"
type NewsSharing struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	NewsID         uint      `gorm:"not null;index;comment:新闻ID" json:"newsId"`
	SenderID       uint      `gorm:"not null;index;comment:分享者ID" json:"senderId"`
	RecipientEmail string    `gorm:"type:varchar(191);not null;index;comment:接收者邮箱" json:"recipientEmail"`
	Message        string    `gorm:"type:varchar(1000);comment:附言" json:"message"`
	SharedAt       time.Time `gorm:"not null;comment:分享时间" json:"sharedAt"`
	IsRead         bool      `gorm:"not null;default:false;comment:是否已读" json:"isRead"`

	News   *News `gorm:"foreignKey:NewsID;constraint:OnDelete:CASCADE" json:"news,omitempty"`
	Sender *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (NewsSharing) TableName() string { return "news_sharing" }
