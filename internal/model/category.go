package model

import "time"

// Category 新闻分类
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex;comment:分类名称" json:"name"`
	Description string    `gorm:"type:varchar(500);comment:描述" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Category) TableName() string { return "category" }
