package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"news-cms/config"
	"news-cms/internal/model"
	"news-cms/internal/repository"
	"news-cms/internal/thread"
	"news-cms/pkg/apperr"
)

// CommentService 评论服务
type CommentService struct {
	clock
	repos     *repository.Repositories
	maxLength int
}

// NewCommentService 创建CommentService实例
func NewCommentService(repos *repository.Repositories, cfg config.CommentConfig) *CommentService {
	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = model.CommentMaxLength
	}
	return &CommentService{clock: defaultClock(), repos: repos, maxLength: maxLength}
}

// AddComment 发表评论或回复
// author 为注册用户或游客；两者同时提供时以用户为准
func (s *CommentService) AddComment(ctx context.Context, newsID uint, author model.Author, content string, parentID *uint) (*model.Comment, error) {
	text, err := s.cleanContent(content)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{NewsID: newsID, Content: text, ParentID: parentID}
	if author.UserID != nil {
		if _, err := s.repos.Users.GetByID(ctx, *author.UserID); err != nil {
			return nil, err
		}
		uid := *author.UserID
		comment.UserID = &uid
	} else {
		name := plainText(author.GuestName)
		if name == "" {
			return nil, apperr.Validation("guest name is required").WithField("guestName", "required")
		}
		if utf8.RuneCountInString(name) > 100 {
			return nil, apperr.Validation("guest name is too long").WithField("guestName", "max 100 characters")
		}
		email := normalizeEmail(author.GuestEmail)
		if err := validateEmail("guestEmail", email); err != nil {
			return nil, err
		}
		comment.GuestName = name
		comment.GuestEmail = email
	}

	news, err := s.repos.News.GetByID(ctx, newsID)
	if err != nil {
		return nil, err
	}
	if news.IsDeleted {
		return nil, apperr.NotFound("news")
	}

	if parentID != nil {
		parent, err := s.repos.Comments.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.IsDeleted {
			return nil, apperr.NotFound("comment")
		}
		if parent.NewsID != newsID {
			return nil, apperr.Validation("parent comment belongs to another article").WithField("parentId", "mismatched article")
		}
	}

	comment.CreatedAt = s.now()
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// EditComment 修改评论内容，仅作者或管理员
func (s *CommentService) EditComment(ctx context.Context, commentID uint, actor model.Actor, content string) (*model.Comment, error) {
	c, err := s.repos.Comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, apperr.NotFound("comment")
	}
	if err := authorizeComment(c, actor); err != nil {
		return nil, err
	}
	text, err := s.cleanContent(content)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repos.Comments.UpdateContent(ctx, commentID, text, now); err != nil {
		return nil, err
	}
	c.Content = text
	c.UpdatedAt = &now
	return c, nil
}

// SoftDeleteComment 软删除评论，重复删除视为成功；回复不受影响
func (s *CommentService) SoftDeleteComment(ctx context.Context, commentID uint, actor model.Actor) error {
	c, err := s.repos.Comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := authorizeComment(c, actor); err != nil {
		return err
	}
	if c.IsDeleted {
		return nil
	}
	return s.repos.Comments.SoftDelete(ctx, commentID)
}

// HideComment 管理员屏蔽评论
func (s *CommentService) HideComment(ctx context.Context, commentID uint, actor model.Actor) error {
	return s.setHidden(ctx, commentID, actor, true)
}

// UnhideComment 取消屏蔽
func (s *CommentService) UnhideComment(ctx context.Context, commentID uint, actor model.Actor) error {
	return s.setHidden(ctx, commentID, actor, false)
}

// ListThread 文章评论森林
// privileged 为 false 时只包含可见评论；已删除文章视为不存在
func (s *CommentService) ListThread(ctx context.Context, newsID uint, privileged bool) (*thread.Forest, error) {
	news, err := s.repos.News.GetByID(ctx, newsID)
	if err != nil {
		return nil, err
	}
	if news.IsDeleted && !privileged {
		return nil, apperr.NotFound("news")
	}
	comments, err := s.repos.Comments.ListByNews(ctx, newsID)
	if err != nil {
		return nil, err
	}
	return thread.Build(comments, thread.Options{Privileged: privileged}), nil
}

func (s *CommentService) setHidden(ctx context.Context, commentID uint, actor model.Actor, hidden bool) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.repos.Comments.GetByID(ctx, commentID); err != nil {
		return err
	}
	return s.repos.Comments.SetHidden(ctx, commentID, hidden)
}

// cleanContent 去除全部 HTML 后按存储的字符数校验
func (s *CommentService) cleanContent(content string) (string, error) {
	text := plainText(content)
	if text == "" {
		return "", apperr.Validation("comment content is required").WithField("content", "required")
	}
	if n := utf8.RuneCountInString(text); n > s.maxLength {
		return "", apperr.Validation("comment content is too long").
			WithField("content", fmt.Sprintf("max %d characters, got %d", s.maxLength, n))
	}
	return text, nil
}

func authorizeComment(c *model.Comment, actor model.Actor) error {
	if actor.IsAdmin() || c.IsAuthoredBy(actor.UserID) {
		return nil
	}
	return apperr.Forbidden("only the author or an admin may modify this comment")
}
