package repository

import (
	"context"
	"time"

	"news-cms/internal/model"
	"news-cms/internal/moderation"

	"gorm.io/gorm"
)

type NewsRepository struct {
	orm *gorm.DB
}

func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{orm: db}
}

// NewsFilter 列表筛选条件
type NewsFilter struct {
	CategoryID *uint
	AuthorID   *uint
}

func (r *NewsRepository) Create(ctx context.Context, news *model.News) error {
	return translate(r.orm.WithContext(ctx).Create(news).Error, "news")
}

// GetByID 获取文章，包括已删除的（由调用方判断可见性）
func (r *NewsRepository) GetByID(ctx context.Context, id uint) (*model.News, error) {
	var n model.News
	if err := r.orm.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, translate(err, "news")
	}
	return &n, nil
}

// UpdateContent 更新正文等字段，不改变审核标记
// 已删除的文章不会被更新
func (r *NewsRepository) UpdateContent(ctx context.Context, id uint, fields map[string]interface{}, at time.Time) error {
	fields["updated_at"] = at
	res := r.orm.WithContext(ctx).Model(&model.News{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(fields)
	if res.Error != nil {
		return translate(res.Error, "news")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "news")
	}
	return nil
}

// ResubmitContent 写入内容并执行重新送审迁移，两者在同一条条件更新中完成
// 仅当标记仍等于 t.From 时生效，返回是否命中
func (r *NewsRepository) ResubmitContent(ctx context.Context, id uint, fields map[string]interface{}, t moderation.Transition, at time.Time) (bool, error) {
	fields["updated_at"] = at
	fields["is_approved"] = t.To.IsApproved
	fields["is_archived"] = t.To.IsArchived
	res := r.orm.WithContext(ctx).Model(&model.News{}).
		Where("id = ? AND is_approved = ? AND is_archived = ? AND is_deleted = ?",
			id, t.From.IsApproved, t.From.IsArchived, t.From.IsDeleted).
		Updates(fields)
	if res.Error != nil {
		return false, translate(res.Error, "news")
	}
	return res.RowsAffected == 1, nil
}

// ApplyTransition 以条件更新执行审核迁移
// 仅当三个标记仍等于 t.From 时才写入，返回是否生效；并发审核最多一方成功
func (r *NewsRepository) ApplyTransition(ctx context.Context, id uint, t moderation.Transition) (bool, error) {
	res := r.orm.WithContext(ctx).Model(&model.News{}).
		Where("id = ? AND is_approved = ? AND is_archived = ? AND is_deleted = ?",
			id, t.From.IsApproved, t.From.IsArchived, t.From.IsDeleted).
		Updates(map[string]interface{}{
			"is_approved": t.To.IsApproved,
			"is_archived": t.To.IsArchived,
			"is_deleted":  t.To.IsDeleted,
		})
	if res.Error != nil {
		return false, translate(res.Error, "news")
	}
	return res.RowsAffected == 1, nil
}

// IncrementReadCount 阅读数加一，仅对未删除文章生效
func (r *NewsRepository) IncrementReadCount(ctx context.Context, id uint) (bool, error) {
	res := r.orm.WithContext(ctx).Model(&model.News{}).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumn("read_count", gorm.Expr("read_count + ?", 1))
	if res.Error != nil {
		return false, translate(res.Error, "news")
	}
	return res.RowsAffected == 1, nil
}

// ListVisible 公开列表：已审核、未归档、未删除，按发布时间倒序
func (r *NewsRepository) ListVisible(ctx context.Context, f NewsFilter, page Page) ([]model.News, int64, error) {
	q := r.orm.WithContext(ctx).Model(&model.News{}).
		Where("is_approved = ? AND is_archived = ? AND is_deleted = ?", true, false, false)
	return r.list(applyFilter(q, f), page)
}

// ListPending 审核队列，按创建时间正序
func (r *NewsRepository) ListPending(ctx context.Context, page Page) ([]model.News, int64, error) {
	q := r.orm.WithContext(ctx).Model(&model.News{}).
		Where("is_approved = ? AND is_archived = ? AND is_deleted = ?", false, false, false)
	var (
		items []model.News
		total int64
	)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "news")
	}
	p := page.Normalize()
	err := q.Order("created_at ASC, id ASC").Limit(p.PageSize).Offset(p.Offset()).Find(&items).Error
	return items, total, translate(err, "news")
}

// ListByAuthor 作者自己的文章（不含已删除），任意审核状态
func (r *NewsRepository) ListByAuthor(ctx context.Context, authorID uint, page Page) ([]model.News, int64, error) {
	q := r.orm.WithContext(ctx).Model(&model.News{}).
		Where("author_id = ? AND is_deleted = ?", authorID, false)
	return r.list(q, page)
}

// CountByCategory 引用该分类的文章数（含已删除，外键仍然存在）
func (r *NewsRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	err := r.orm.WithContext(ctx).Model(&model.News{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, translate(err, "news")
}

func (r *NewsRepository) list(q *gorm.DB, page Page) ([]model.News, int64, error) {
	var (
		items []model.News
		total int64
	)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "news")
	}
	p := page.Normalize()
	err := q.Order("created_at DESC, id DESC").Limit(p.PageSize).Offset(p.Offset()).Find(&items).Error
	return items, total, translate(err, "news")
}

func applyFilter(q *gorm.DB, f NewsFilter) *gorm.DB {
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	return q
}
