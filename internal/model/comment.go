package model

import "time"

// CommentMaxLength 评论内容最大字符数
const CommentMaxLength = 1000

// Comment 评论
// ParentID 自引用：为空表示顶层评论，否则为回复
// 作者为注册用户（UserID）或游客（GuestName + GuestEmail）之一
// 删除与隐藏是两个独立标记，分别对应作者撤回与管理员屏蔽
type Comment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Content    string     `gorm:"type:varchar(4000);not null;comment:内容" json:"content"`
	CreatedAt  time.Time  `gorm:"index:idx_comment_thread,priority:2;comment:创建时间" json:"createdAt"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false;comment:编辑时间" json:"updatedAt,omitempty"`
	IsDeleted  bool       `gorm:"not null;default:false;comment:是否删除" json:"isDeleted"`
	IsHidden   bool       `gorm:"not null;default:false;comment:是否被隐藏" json:"isHidden"`
	NewsID     uint       `gorm:"not null;index:idx_comment_thread,priority:1;comment:新闻ID" json:"newsId"`
	UserID     *uint      `gorm:"index;comment:用户ID" json:"userId,omitempty"`
	GuestName  string     `gorm:"type:varchar(100);comment:游客昵称" json:"guestName,omitempty"`
	GuestEmail string     `gorm:"type:varchar(191);comment:游客邮箱" json:"guestEmail,omitempty"`
	ParentID   *uint      `gorm:"index;comment:父评论ID" json:"parentId,omitempty"`

	News   *News    `gorm:"foreignKey:NewsID;constraint:OnDelete:RESTRICT" json:"-"`
	User   *User    `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Parent *Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Comment) TableName() string { return "comment" }

// IsApproved 评论是否可见；由存储的标记推导，不落库
func (c *Comment) IsApproved() bool {
	return !c.IsDeleted && !c.IsHidden
}

// IsAuthoredBy 是否为该注册用户所写
func (c *Comment) IsAuthoredBy(userID uint) bool {
	return c.UserID != nil && *c.UserID == userID
}
