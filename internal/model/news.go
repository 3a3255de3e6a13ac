package model

import "time"

// News 新闻文章
// 审核状态由 IsApproved / IsArchived / IsDeleted 三个独立标记组合而成，见 moderation 包
type News struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"type:varchar(255);not null;comment:标题" json:"title"`
	Content    string     `gorm:"type:text;not null;comment:正文" json:"content"`
	ImageURL   string     `gorm:"type:varchar(512);comment:封面图" json:"imageUrl"`
	AuthorID   uint       `gorm:"not null;index;comment:作者ID" json:"authorId"`
	CategoryID *uint      `gorm:"index;comment:分类ID" json:"categoryId,omitempty"`
	IsApproved bool       `gorm:"not null;default:false;index;comment:是否已审核" json:"isApproved"`
	CreatedAt  time.Time  `gorm:"index;comment:创建时间" json:"createdAt"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false;comment:更新时间" json:"updatedAt,omitempty"`
	ReadCount  int64      `gorm:"not null;default:0;comment:阅读数" json:"readCount"`
	IsDeleted  bool       `gorm:"not null;default:false;index;comment:是否删除" json:"isDeleted"`
	IsArchived bool       `gorm:"not null;default:false;index;comment:是否归档" json:"isArchived"`

	// 有作者或分类引用时禁止物理删除
	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"author,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
}

func (News) TableName() string { return "news" }

// IsVisible 是否在公开列表中展示
func (n *News) IsVisible() bool {
	return n.IsApproved && !n.IsArchived && !n.IsDeleted
}
