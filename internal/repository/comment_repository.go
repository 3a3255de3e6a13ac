package repository

import (
	"context"
	"time"

	"news-cms/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	orm *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{orm: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	return translate(r.orm.WithContext(ctx).Create(c).Error, "comment")
}

// GetByID 获取评论，包括已删除与被隐藏的
func (r *CommentRepository) GetByID(ctx context.Context, id uint) (*model.Comment, error) {
	var c model.Comment
	if err := r.orm.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "comment")
	}
	return &c, nil
}

// ListByNews 文章下全部评论，按 (created_at, id) 升序；过滤交给 thread 包
func (r *CommentRepository) ListByNews(ctx context.Context, newsID uint) ([]model.Comment, error) {
	var items []model.Comment
	err := r.orm.WithContext(ctx).
		Where("news_id = ?", newsID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, translate(err, "comment")
}

// UpdateContent 编辑未删除的评论
func (r *CommentRepository) UpdateContent(ctx context.Context, id uint, content string, at time.Time) error {
	res := r.orm.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"content": content, "updated_at": at})
	if res.Error != nil {
		return translate(res.Error, "comment")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "comment")
	}
	return nil
}

// SoftDelete 标记删除，回复保持不变
func (r *CommentRepository) SoftDelete(ctx context.Context, id uint) error {
	err := r.orm.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
	return translate(err, "comment")
}

// SetHidden 设置隐藏标记，与删除标记相互独立
func (r *CommentRepository) SetHidden(ctx context.Context, id uint, hidden bool) error {
	err := r.orm.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Update("is_hidden", hidden).Error
	return translate(err, "comment")
}
