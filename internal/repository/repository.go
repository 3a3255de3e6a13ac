package repository

import (
	"context"
	"errors"

	"news-cms/pkg/apperr"

	"gorm.io/gorm"
)

// Repositories 聚合全部数据仓储，便于在同一事务内组合使用
type Repositories struct {
	db            *gorm.DB
	Users         *UserRepository
	Profiles      *ProfileRepository
	SocialLogins  *SocialLoginRepository
	Sessions      *SessionRepository
	Codes         *VerificationRepository
	News          *NewsRepository
	Categories    *CategoryRepository
	Comments      *CommentRepository
	Sharings      *SharingRepository
	Subscriptions *SubscriptionRepository
}

// New 创建仓储集合
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewUserRepository(db),
		Profiles:      NewProfileRepository(db),
		SocialLogins:  NewSocialLoginRepository(db),
		Sessions:      NewSessionRepository(db),
		Codes:         NewVerificationRepository(db),
		News:          NewNewsRepository(db),
		Categories:    NewCategoryRepository(db),
		Comments:      NewCommentRepository(db),
		Sharings:      NewSharingRepository(db),
		Subscriptions: NewSubscriptionRepository(db),
	}
}

// DB 底层连接
func (r *Repositories) DB() *gorm.DB { return r.db }

// Transaction 在一个事务中执行 fn；fn 内只能使用传入的 tx 仓储
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Page 分页参数
type Page struct {
	Page     int
	PageSize int
}

// Normalize 修正非法分页参数
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 || p.PageSize > 100 {
		p.PageSize = 20
	}
	return p
}

// Offset 偏移量
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// translate 把 gorm 错误转换为业务错误
func translate(err error, entity string) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.KindConflict, entity+" already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Wrap(apperr.KindConflict, entity+" is still referenced", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindUnavailable, "request cancelled", err)
	default:
		return apperr.Unavailable(err)
	}
}
